package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/storage"
)

// SQLiteStorage keeps the save slot in a single-row SQLite table.
type SQLiteStorage struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

var _ storage.Storage = (*SQLiteStorage)(nil)

type snapshotRow struct {
	KingdomID string `db:"kingdom_id"`
	Turn      int    `db:"turn"`
	Data      []byte `db:"data"`
	SavedAt   string `db:"saved_at"`
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStorage{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		kingdom_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		data BLOB NOT NULL,
		saved_at TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap *state.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	row := snapshotRow{
		KingdomID: snap.ID.String(),
		Turn:      snap.Turn,
		Data:      data,
		SavedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	_, err = s.conn.NamedExecContext(ctx, `INSERT INTO snapshot (slot, kingdom_id, turn, data, saved_at)
		VALUES (1, :kingdom_id, :turn, :data, :saved_at)
		ON CONFLICT(slot) DO UPDATE SET
			kingdom_id = excluded.kingdom_id,
			turn = excluded.turn,
			data = excluded.data,
			saved_at = excluded.saved_at`, row)
	if err != nil {
		s.logger.Error("Failed to save snapshot", "kingdom_id", row.KingdomID, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (*state.Snapshot, error) {
	var row snapshotRow
	err := s.conn.GetContext(ctx, &row, "SELECT kingdom_id, turn, data, saved_at FROM snapshot WHERE slot = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load snapshot", "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(row.Data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStorage) DeleteSnapshot(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM snapshot"); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
