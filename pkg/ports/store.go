package ports

import (
	"context"

	"github.com/aretw0/vine/pkg/domain"
)

// StateStore defines the interface for persisting host snapshots.
// This allows the scene and reload policy to survive a restart.
type StateStore interface {
	// Save persists the snapshot under the given key.
	Save(ctx context.Context, key string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for the given key.
	// Returns domain.ErrSnapshotNotFound if nothing was saved under the key.
	Load(ctx context.Context, key string) (*domain.Snapshot, error)

	// Delete removes the snapshot for the given key.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys.
	List(ctx context.Context) ([]string, error)
}
