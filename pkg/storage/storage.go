package storage

import (
	"context"

	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

// Storage persists the single kingdom save slot.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveSnapshot replaces the saved kingdom.
	SaveSnapshot(ctx context.Context, snap *state.Snapshot) error
	// LoadSnapshot returns nil, nil when nothing is saved.
	LoadSnapshot(ctx context.Context) (*state.Snapshot, error)
	DeleteSnapshot(ctx context.Context) error
}
