package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	newSnapshot := func() *domain.Snapshot {
		return &domain.Snapshot{
			Script: "gui.lua",
			Shape: &domain.ShapeState{
				Kind:     domain.ShapeSquare,
				Position: domain.Vec2{X: 150, Y: 150},
				Size:     50,
				Color:    domain.RGBA(1, 0, 0, 0.5),
			},
			Background: domain.DefaultBackground,
			AutoReload: true,
			SavedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot()

		err := store.Save(ctx, key, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		require.NotNil(t, loaded.Shape)
		assert.Equal(t, snap.Script, loaded.Script)
		assert.Equal(t, *snap.Shape, *loaded.Shape)
		assert.Equal(t, snap.Background, loaded.Background)
		assert.True(t, loaded.AutoReload)
		assert.True(t, snap.SavedAt.Equal(loaded.SavedAt))
	})

	t.Run("Overwrite", func(t *testing.T) {
		snap := newSnapshot()
		snap.Shape.Size = 75
		require.NoError(t, store.Save(ctx, key, snap))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 75.0, loaded.Shape.Size)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, newSnapshot())
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, newSnapshot())
		_ = store.Save(ctx, id2, newSnapshot())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
