package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// SnapshotStore persists graph snapshots under a graph id.
type SnapshotStore interface {
	// Save persists the snapshot, replacing any previous one.
	Save(ctx context.Context, graphID string, snap *domain.Snapshot) error

	// Load retrieves a snapshot.
	// Returns domain.ErrGraphNotFound if the graph does not exist.
	Load(ctx context.Context, graphID string) (*domain.Snapshot, error)

	// Delete removes a snapshot. Deleting a missing graph is not an error.
	Delete(ctx context.Context, graphID string) error

	// List returns the ids of every stored graph.
	List(ctx context.Context) ([]string, error)
}
