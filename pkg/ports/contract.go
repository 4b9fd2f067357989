package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/domain"
)

// sampleSnapshot is a small graph exercising every value kind.
func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Nodes: []domain.NodeRecord{
			{ID: "c", Type: "Constant", Config: map[string]any{"value": 3.0}},
			{ID: "sum", Type: "Add", Inputs: map[string]any{"b": 4.0}},
			{ID: "flag", Type: "Not", Inputs: map[string]any{"a": true}},
			{ID: "txt", Type: "Repeat", Inputs: map[string]any{"c": "ab"}},
			{ID: "arr", Type: "Sum", Inputs: map[string]any{"x": []any{1.0, 2.0}}},
		},
		Connections: []domain.Connection{{Source: "c", Target: "sum", Port: "a"}},
	}
}

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	graphID := fmt.Sprintf("contract-graph-%d", time.Now().UnixNano())

	t.Run("Save and Load", func(t *testing.T) {
		snap := sampleSnapshot()
		require.NoError(t, store.Save(ctx, graphID, snap), "Save should not return error")

		loaded, err := store.Load(ctx, graphID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Nodes, len(snap.Nodes))
		for i := range snap.Nodes {
			assert.Equal(t, snap.Nodes[i].ID, loaded.Nodes[i].ID, "node order must be preserved")
			assert.Equal(t, snap.Nodes[i].Type, loaded.Nodes[i].Type)
		}
		assert.Equal(t, snap.Connections, loaded.Connections)
		assert.EqualValues(t, 4, loaded.Nodes[1].Inputs["b"])
		assert.Equal(t, true, loaded.Nodes[2].Inputs["a"])

		// Mutating the loaded copy must not affect the store.
		loaded.Nodes[0].ID = "mutated"
		again, err := store.Load(ctx, graphID)
		require.NoError(t, err)
		assert.Equal(t, "c", again.Nodes[0].ID)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, graphID, &domain.Snapshot{}))
		loaded, err := store.Load(ctx, graphID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Nodes)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+graphID)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, graphID, sampleSnapshot()))
		require.NoError(t, store.Delete(ctx, graphID), "Delete should not return error")

		_, err := store.Load(ctx, graphID)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound, "Load after Delete should return ErrGraphNotFound")
		assert.NoError(t, store.Delete(ctx, graphID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := graphID+"-1", graphID+"-2"
		require.NoError(t, store.Save(ctx, id1, sampleSnapshot()))
		require.NoError(t, store.Save(ctx, id2, sampleSnapshot()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunGraphLoaderContract verifies that a loader returns the expected graph.
func RunGraphLoaderContract(t *testing.T, loader GraphLoader, want *domain.Snapshot) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		got, err := loader.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got.Nodes, len(want.Nodes))
		for i, n := range want.Nodes {
			assert.Equal(t, n.ID, got.Nodes[i].ID)
			assert.Equal(t, n.Type, got.Nodes[i].Type)
			assert.Len(t, got.Nodes[i].Inputs, len(n.Inputs))
		}
		assert.ElementsMatch(t, want.Connections, got.Connections)
	})

	t.Run("Load Is Repeatable", func(t *testing.T) {
		a, err := loader.Load(ctx)
		require.NoError(t, err)
		b, err := loader.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}
