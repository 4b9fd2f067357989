package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/graph"
	"github.com/aretw0/weft/pkg/registry"
)

// ErrNoMailbox is returned by Wait when the engine was built with a custom Dispatcher.
var ErrNoMailbox = errors.New("engine has no built-in completion queue")

// tracker follows the computes issued for one node instance. A removed and
// re-created node gets a new tracker, so results addressed to the old one
// are recognised as stale.
type tracker struct {
	node     *domain.Node
	issued   uint64
	epoch    uint64
	inflight int
}

// Engine propagates value changes through a graph.
type Engine struct {
	reg   *registry.Registry
	table *graph.Table
	track map[string]*tracker
	seq   uint64

	pending    int
	mailbox    *mailbox
	dispatcher Dispatcher
	asyncCtx   context.Context

	policy ResolvePolicy
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// NewEngine creates an engine over an empty graph.
func NewEngine(reg *registry.Registry, opts ...Option) *Engine {
	mb := newMailbox()
	e := &Engine{
		reg:        reg,
		table:      graph.New(),
		track:      make(map[string]*tracker),
		mailbox:    mb,
		dispatcher: mb,
		asyncCtx:   context.Background(),
		logger:     defaultLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the definition catalog the engine resolves types against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Policy returns the async resolve policy.
func (e *Engine) Policy() ResolvePolicy { return e.policy }

// CreateNode instantiates a node of the given type. Nodes without inputs are
// fully populated and compute immediately.
func (e *Engine) CreateNode(ctx context.Context, typ, id string, cfg domain.Config) error {
	def, err := e.reg.Lookup(typ)
	if err != nil {
		return err
	}
	n, err := domain.NewNode(def, id, cfg)
	if err != nil {
		return err
	}
	if err := e.table.AddNode(n); err != nil {
		return err
	}
	e.added(ctx, n)
	return nil
}

// AddNodes creates a batch of nodes from records, including any recorded
// input values. Either every node is added or none is.
func (e *Engine) AddNodes(ctx context.Context, recs []domain.NodeRecord) error {
	nodes := make([]*domain.Node, 0, len(recs))
	for _, rec := range recs {
		n, err := graph.NodeFromRecord(e.reg, rec)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	if err := e.table.AddNodes(nodes); err != nil {
		return err
	}
	for _, n := range nodes {
		e.added(ctx, n)
	}
	return nil
}

func (e *Engine) added(ctx context.Context, n *domain.Node) {
	e.track[n.ID()] = &tracker{node: n}
	e.logger.Debug("node added", "node", n.ID(), "type", n.Type())
	if e.hooks.OnGraphChange != nil {
		e.hooks.OnGraphChange(ctx, &domain.GraphEvent{
			EventBase: domain.NewBase(domain.EventNodeAdded),
			NodeID:    n.ID(),
			NodeType:  n.Type(),
		})
	}
	e.evaluate(ctx, n)
}

// SetInput writes a value to a node input. Writing a value equal to the
// current one does nothing.
func (e *Engine) SetInput(ctx context.Context, id, port string, v domain.Value) error {
	n, err := e.table.Node(id)
	if err != nil {
		return err
	}
	return e.write(ctx, n, port, v)
}

// SetInputRaw parses a decoded JSON or YAML value against the port's data
// type and writes it.
func (e *Engine) SetInputRaw(ctx context.Context, id, port string, raw any) error {
	n, err := e.table.Node(id)
	if err != nil {
		return err
	}
	v, err := graph.ParseInput(n, port, raw)
	if err != nil {
		return err
	}
	return e.write(ctx, n, port, v)
}

// ClearInput resets an input to unpopulated. The node drops its output and
// the reset cascades downstream.
func (e *Engine) ClearInput(ctx context.Context, id, port string) error {
	n, err := e.table.Node(id)
	if err != nil {
		return err
	}
	if _, err := n.Input(port); err != nil {
		return err
	}
	e.clear(ctx, n, port)
	return nil
}

// SetConfig merges a config patch. A changed config on a populated node
// triggers a recompute.
func (e *Engine) SetConfig(ctx context.Context, id string, patch domain.Config) error {
	n, err := e.table.Node(id)
	if err != nil {
		return err
	}
	changed, err := n.SetConfig(patch)
	if err != nil || !changed {
		return err
	}
	e.evaluate(ctx, n)
	return nil
}

// Connect wires source's output into target's port, replacing any existing
// connection into that port. The target input immediately takes the
// source's current output, or becomes unpopulated if the source has none.
func (e *Engine) Connect(ctx context.Context, source, target, port string) error {
	c := domain.Connection{Source: source, Target: target, Port: port}
	if existing, ok := e.table.Incoming(target, port); !ok || existing != c {
		replaced, err := e.table.Connect(source, target, port)
		if err != nil {
			return err
		}
		if replaced != nil {
			e.graphEvent(ctx, domain.EventDisconnected, *replaced)
		}
		e.graphEvent(ctx, domain.EventConnected, c)
	}

	// An existing edge is re-seeded too, so the input always mirrors the source.
	src, _ := e.table.Node(source)
	dst, _ := e.table.Node(target)
	if out := src.Output(); out != nil {
		return e.write(ctx, dst, port, out)
	}
	e.clear(ctx, dst, port)
	return nil
}

// Disconnect removes a connection. The freed input becomes unpopulated.
// Removing a connection that does not exist is a no-op.
func (e *Engine) Disconnect(ctx context.Context, c domain.Connection) error {
	removed, err := e.table.Disconnect(c)
	if err != nil || !removed {
		return err
	}
	e.graphEvent(ctx, domain.EventDisconnected, c)
	dst, _ := e.table.Node(c.Target)
	e.clear(ctx, dst, c.Port)
	return nil
}

// DisconnectAll removes every connection touching a node, resetting each
// freed input.
func (e *Engine) DisconnectAll(ctx context.Context, id string) error {
	removed, err := e.table.DisconnectAll(id)
	if err != nil {
		return err
	}
	for _, c := range removed {
		e.graphEvent(ctx, domain.EventDisconnected, c)
		dst, _ := e.table.Node(c.Target)
		e.clear(ctx, dst, c.Port)
	}
	return nil
}

// RemoveNode deletes a node and its connections. Inputs it fed become
// unpopulated; in-flight computes for it are discarded on arrival.
func (e *Engine) RemoveNode(ctx context.Context, id string) error {
	n, removed, err := e.table.RemoveNode(id)
	if err != nil {
		return err
	}
	delete(e.track, id)
	for _, c := range removed {
		e.graphEvent(ctx, domain.EventDisconnected, c)
	}
	e.logger.Debug("node removed", "node", id)
	if e.hooks.OnGraphChange != nil {
		e.hooks.OnGraphChange(ctx, &domain.GraphEvent{
			EventBase: domain.NewBase(domain.EventNodeRemoved),
			NodeID:    id,
			NodeType:  n.Type(),
		})
	}
	for _, c := range removed {
		if c.Source != id {
			continue
		}
		if dst, err := e.table.Node(c.Target); err == nil {
			e.clear(ctx, dst, c.Port)
		}
	}
	return nil
}

// Output returns a node's current output and state.
func (e *Engine) Output(id string) (domain.Value, domain.NodeState, error) {
	n, err := e.table.Node(id)
	if err != nil {
		return nil, domain.StateUnpopulated, err
	}
	return n.Output(), n.State(), nil
}

// Node returns a copy of a node's state.
func (e *Engine) Node(id string) (domain.NodeView, error) {
	n, err := e.table.Node(id)
	if err != nil {
		return domain.NodeView{}, err
	}
	return n.View(), nil
}

// Nodes returns every node in insertion order.
func (e *Engine) Nodes() []domain.NodeView {
	nodes := e.table.Nodes()
	out := make([]domain.NodeView, len(nodes))
	for i, n := range nodes {
		out[i] = n.View()
	}
	return out
}

// ConnectedNodes returns the direct downstream targets of a node, one per
// connection, in connection creation order.
func (e *Engine) ConnectedNodes(id string) ([]string, error) {
	return e.table.ConnectedNodes(id)
}

// Connections returns every connection in creation order.
func (e *Engine) Connections() []domain.Connection {
	return e.table.Connections()
}

// Snapshot captures the graph for persistence.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.table.Snapshot()
}

// Restore replaces the whole graph with a snapshot. The snapshot is
// validated first; on failure the current graph is left untouched.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot) error {
	if err := graph.Validate(e.reg, snap); err != nil {
		return err
	}

	nodes := e.table.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if err := e.RemoveNode(ctx, nodes[i].ID()); err != nil {
			return err
		}
	}
	if snap == nil {
		return nil
	}
	if err := e.AddNodes(ctx, snap.Nodes); err != nil {
		return err
	}
	for _, c := range snap.Connections {
		if err := e.Connect(ctx, c.Source, c.Target, c.Port); err != nil {
			return fmt.Errorf("connection %s: %w", c, err)
		}
	}
	return nil
}

// Pending returns the number of async computes in flight.
func (e *Engine) Pending() int { return e.pending }

// Poll applies every async result that has arrived, without blocking. It
// returns how many were applied.
func (e *Engine) Poll() int {
	if e.mailbox == nil {
		return 0
	}
	q := e.mailbox.drain()
	for _, fn := range q {
		fn()
	}
	return len(q)
}

// Wait applies async results as they arrive until none are in flight.
func (e *Engine) Wait(ctx context.Context) error {
	if e.mailbox == nil {
		return ErrNoMailbox
	}
	for {
		e.Poll()
		if e.pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.mailbox.ready:
		}
	}
}

func (e *Engine) graphEvent(ctx context.Context, typ domain.EventType, c domain.Connection) {
	e.logger.Debug(string(typ), "connection", c.String())
	if e.hooks.OnGraphChange != nil {
		e.hooks.OnGraphChange(ctx, &domain.GraphEvent{EventBase: domain.NewBase(typ), Connection: &c})
	}
}
