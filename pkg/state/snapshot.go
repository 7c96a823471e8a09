package state

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
)

// SnapshotVersion is bumped when the persisted shape changes incompatibly.
const SnapshotVersion = 1

// SavedCrisis is an active crisis reduced to its mutable fields.
type SavedCrisis struct {
	CrisisID      string     `json:"crisis_id"`
	TurnsActive   int        `json:"turns_active"`
	ChainProgress string     `json:"chain_progress,omitempty"`
	ChainState    ChainState `json:"chain_state,omitempty"`
}

// Snapshot is the persisted form of a GameState. Crisis definitions are
// not stored; they are rejoined from the catalog on restore.
type Snapshot struct {
	Version     int                        `json:"version"`
	ID          uuid.UUID                  `json:"id"`
	PlayerName  string                     `json:"player_name"`
	KingdomName string                     `json:"kingdom_name"`
	Turn        int                        `json:"turn"`
	Clock       Clock                      `json:"clock"`
	Resources   economy.ResourceSet        `json:"resources"`
	Factions    economy.FactionStandingSet `json:"factions"`
	Active      []SavedCrisis              `json:"active_crises"`
	ChainOwner  string                     `json:"chain_owner,omitempty"`
	Event       *narrative.Event           `json:"event,omitempty"`
	Ended       bool                       `json:"ended"`
	EndReason   string                     `json:"end_reason,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// LookupError marks a saved crisis whose id the catalog does not know.
type LookupError struct {
	CrisisID string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("crisis %q not found in catalog", e.CrisisID)
}

// Snapshot captures the state for persistence.
func (gs *GameState) Snapshot() *Snapshot {
	snap := &Snapshot{
		Version:     SnapshotVersion,
		ID:          gs.ID,
		PlayerName:  gs.PlayerName,
		KingdomName: gs.KingdomName,
		Turn:        gs.Turn,
		Clock:       gs.Clock,
		Resources:   gs.Economy.Resources,
		Factions:    gs.Economy.Factions,
		Active:      make([]SavedCrisis, 0, len(gs.Active)),
		ChainOwner:  gs.ChainOwner,
		Event:       gs.Event,
		Ended:       gs.Ended,
		EndReason:   gs.EndReason,
		CreatedAt:   gs.CreatedAt,
		UpdatedAt:   gs.UpdatedAt,
	}
	for _, ac := range gs.Active {
		snap.Active = append(snap.Active, SavedCrisis{
			CrisisID:      ac.CrisisID,
			TurnsActive:   ac.TurnsActive,
			ChainProgress: ac.ChainProgress,
			ChainState:    ac.ChainState,
		})
	}
	return snap
}

// Restore rebuilds a GameState from a snapshot. Saved crises with no
// catalog match, an unknown chain state, or repeating an earlier id are
// dropped and logged. Out-of-range clock and economy values are clamped.
// The returned errors list every correction.
func Restore(snap *Snapshot, catalog *crisis.Catalog, logger *slog.Logger) (*GameState, []error) {
	gs := &GameState{
		ID:          snap.ID,
		PlayerName:  snap.PlayerName,
		KingdomName: snap.KingdomName,
		Turn:        snap.Turn,
		Clock:       snap.Clock,
		Economy:     economy.Economy{Resources: snap.Resources, Factions: snap.Factions},
		Active:      make([]*ActiveCrisis, 0, len(snap.Active)),
		ChainOwner:  snap.ChainOwner,
		Event:       snap.Event,
		Ended:       snap.Ended,
		EndReason:   snap.EndReason,
		CreatedAt:   snap.CreatedAt,
		UpdatedAt:   snap.UpdatedAt,
	}

	var dropped []error
	if !gs.Clock.Valid() {
		err := fmt.Errorf("clock %d/%d out of range", gs.Clock.Year, gs.Clock.Month)
		gs.Clock.Month = ((gs.Clock.Month % len(monthNames)) + len(monthNames)) % len(monthNames)
		gs.Clock.Year = max(gs.Clock.Year, 1)
		logger.Warn("Corrected saved clock", "error", err, "game_id", snap.ID.String())
		dropped = append(dropped, err)
	}
	if gs.Economy.Normalize() {
		err := errors.New("saved economy out of range")
		logger.Warn("Clamped saved economy", "error", err, "game_id", snap.ID.String())
		dropped = append(dropped, err)
	}

	for _, sc := range snap.Active {
		def, ok := catalog.Lookup(sc.CrisisID)
		if !ok {
			err := &LookupError{CrisisID: sc.CrisisID}
			logger.Warn("Dropping saved crisis", "error", err, "game_id", snap.ID.String())
			dropped = append(dropped, err)
			continue
		}
		if !sc.ChainState.Valid() {
			err := fmt.Errorf("saved crisis %q has unknown chain state %q", sc.CrisisID, string(sc.ChainState))
			logger.Warn("Dropping saved crisis", "error", err, "game_id", snap.ID.String())
			dropped = append(dropped, err)
			continue
		}
		if gs.IsActive(sc.CrisisID) {
			err := fmt.Errorf("duplicate saved crisis %q", sc.CrisisID)
			logger.Warn("Dropping saved crisis", "error", err, "game_id", snap.ID.String())
			dropped = append(dropped, err)
			continue
		}
		gs.Active = append(gs.Active, &ActiveCrisis{
			Definition:    def,
			CrisisID:      sc.CrisisID,
			TurnsActive:   sc.TurnsActive,
			ChainProgress: sc.ChainProgress,
			ChainState:    sc.ChainState,
		})
	}

	if gs.ChainOwner != "" && !gs.IsActive(gs.ChainOwner) {
		gs.ChainOwner = ""
		if gs.Event != nil {
			gs.Event.ChainCrisisID = ""
			gs.Event.StageID = ""
		}
	}
	return gs, dropped
}
