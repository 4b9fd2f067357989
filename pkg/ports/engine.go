package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
)

// GraphEngine is the inbound surface transport adapters drive. It is
// implemented by *weft.Engine.
type GraphEngine interface {
	Registry() *registry.Registry

	CreateNode(ctx context.Context, typ, id string, cfg domain.Config) (string, error)
	RemoveNode(ctx context.Context, id string) error
	SetInputRaw(ctx context.Context, id, port string, raw any) error
	ClearInput(ctx context.Context, id, port string) error
	SetConfig(ctx context.Context, id string, patch domain.Config) error

	Connect(ctx context.Context, source, target, port string) error
	Disconnect(ctx context.Context, c domain.Connection) error

	Output(ctx context.Context, id string) (domain.Value, domain.NodeState, error)
	Node(ctx context.Context, id string) (domain.NodeView, error)
	Nodes(ctx context.Context) ([]domain.NodeView, error)
	ConnectedNodes(ctx context.Context, id string) ([]string, error)
	Connections(ctx context.Context) ([]domain.Connection, error)

	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Restore(ctx context.Context, snap *domain.Snapshot) error
	WaitIdle(ctx context.Context) error
	Subscribe(ctx context.Context, nodeIDs ...string) <-chan domain.Event
}
