package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// GraphLoader reads a graph definition from some source.
type GraphLoader interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying graph changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
