package weft

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/weft/internal/broadcast"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/nodes"
	"github.com/aretw0/weft/pkg/registry"
)

// Version is set at build time.
var Version = "dev"

// ResolvePolicy re-exports the runtime policy for async results.
type ResolvePolicy = runtime.ResolvePolicy

const (
	ResolveLatestIssued   = runtime.ResolveLatestIssued
	ResolveLatestResolved = runtime.ResolveLatestResolved
)

// Engine is the high-level entry point for the library. It serializes every
// operation through one command goroutine, which makes it safe for
// concurrent use.
type Engine struct {
	rt       *runtime.Engine
	reg      *registry.Registry
	hub      *broadcast.Hub
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	policy   ResolvePolicy
	eventBuf int

	cmds      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc

	// idle is only touched on the command goroutine.
	idle []chan struct{}
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry sets the node catalog. The default is the builtin catalog.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.reg = r
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Hooks run on the
// command goroutine and must not call back into the Engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.ComposeHooks(e.hooks, hooks)
	}
}

// WithResolvePolicy chooses how superseded async results are handled.
func WithResolvePolicy(p ResolvePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithEventBuffer sets the channel capacity of each Subscribe stream.
func WithEventBuffer(n int) Option {
	return func(e *Engine) {
		e.eventBuf = n
	}
}

// New creates an engine with an empty graph and starts its command loop.
// Call Close to stop it.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   logging.NewNop(),
		hub:      broadcast.NewHub(),
		eventBuf: broadcast.DefaultBuffer,
		cmds:     make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = nodes.Builtin()
	}

	asyncCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.rt = runtime.NewEngine(e.reg,
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(domain.ComposeHooks(e.hooks, e.hub.Hooks())),
		runtime.WithResolvePolicy(e.policy),
		runtime.WithDispatcher(runtime.DispatcherFunc(e.dispatch)),
		runtime.WithAsyncContext(asyncCtx),
	)

	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.cmds:
			fn()
		case <-e.quit:
			return
		}
	}
}

// dispatch posts an async completion onto the command goroutine. After
// Close the completion is dropped.
func (e *Engine) dispatch(fn func()) {
	select {
	case e.cmds <- func() {
		fn()
		e.notifyIdle()
	}:
	case <-e.done:
	}
}

func (e *Engine) notifyIdle() {
	if e.rt.Pending() > 0 {
		return
	}
	for _, ch := range e.idle {
		close(ch)
	}
	e.idle = nil
}

// do runs fn on the command goroutine and returns its error.
func (e *Engine) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	errc := make(chan error, 1)
	select {
	case e.cmds <- func() { errc <- fn() }:
	case <-e.done:
		return domain.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-e.done:
		return domain.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the command loop, cancels in-flight async computes and closes
// every Subscribe stream. Operations after Close return domain.ErrClosed.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.cancel()
		close(e.quit)
		<-e.done
		e.hub.Close()
	})
	return nil
}

// Registry returns the node catalog.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Policy returns the async resolve policy.
func (e *Engine) Policy() ResolvePolicy { return e.policy }

// CreateNode instantiates a node and returns its id. An empty id is replaced
// by a generated UUID.
func (e *Engine) CreateNode(ctx context.Context, typ, id string, cfg domain.Config) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	err := e.do(ctx, func() error {
		return e.rt.CreateNode(ctx, typ, id, cfg)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddNodes creates a batch of nodes atomically.
func (e *Engine) AddNodes(ctx context.Context, recs []domain.NodeRecord) error {
	return e.do(ctx, func() error { return e.rt.AddNodes(ctx, recs) })
}

// SetInput writes a value to a node input.
func (e *Engine) SetInput(ctx context.Context, id, port string, v domain.Value) error {
	return e.do(ctx, func() error { return e.rt.SetInput(ctx, id, port, v) })
}

// SetInputRaw parses a decoded JSON or YAML value for the port and writes it.
func (e *Engine) SetInputRaw(ctx context.Context, id, port string, raw any) error {
	return e.do(ctx, func() error { return e.rt.SetInputRaw(ctx, id, port, raw) })
}

// ClearInput resets a node input to unpopulated.
func (e *Engine) ClearInput(ctx context.Context, id, port string) error {
	return e.do(ctx, func() error { return e.rt.ClearInput(ctx, id, port) })
}

// SetConfig merges a config patch into a node's config.
func (e *Engine) SetConfig(ctx context.Context, id string, patch domain.Config) error {
	return e.do(ctx, func() error { return e.rt.SetConfig(ctx, id, patch) })
}

// Connect wires source's output into target's input port.
func (e *Engine) Connect(ctx context.Context, source, target, port string) error {
	return e.do(ctx, func() error { return e.rt.Connect(ctx, source, target, port) })
}

// Disconnect removes a connection.
func (e *Engine) Disconnect(ctx context.Context, c domain.Connection) error {
	return e.do(ctx, func() error { return e.rt.Disconnect(ctx, c) })
}

// DisconnectAll removes every connection touching a node.
func (e *Engine) DisconnectAll(ctx context.Context, id string) error {
	return e.do(ctx, func() error { return e.rt.DisconnectAll(ctx, id) })
}

// RemoveNode deletes a node and its connections.
func (e *Engine) RemoveNode(ctx context.Context, id string) error {
	return e.do(ctx, func() error { return e.rt.RemoveNode(ctx, id) })
}

// Output returns a node's current output and state.
func (e *Engine) Output(ctx context.Context, id string) (domain.Value, domain.NodeState, error) {
	var (
		v     domain.Value
		state domain.NodeState
	)
	err := e.do(ctx, func() error {
		var err error
		v, state, err = e.rt.Output(id)
		return err
	})
	return v, state, err
}

// Node returns a copy of a node's full state.
func (e *Engine) Node(ctx context.Context, id string) (domain.NodeView, error) {
	var view domain.NodeView
	err := e.do(ctx, func() error {
		var err error
		view, err = e.rt.Node(id)
		return err
	})
	return view, err
}

// Nodes returns every node in insertion order.
func (e *Engine) Nodes(ctx context.Context) ([]domain.NodeView, error) {
	var views []domain.NodeView
	err := e.do(ctx, func() error {
		views = e.rt.Nodes()
		return nil
	})
	return views, err
}

// ConnectedNodes returns the direct downstream targets of a node.
func (e *Engine) ConnectedNodes(ctx context.Context, id string) ([]string, error) {
	var ids []string
	err := e.do(ctx, func() error {
		var err error
		ids, err = e.rt.ConnectedNodes(id)
		return err
	})
	return ids, err
}

// Connections returns every connection in creation order.
func (e *Engine) Connections(ctx context.Context) ([]domain.Connection, error) {
	var conns []domain.Connection
	err := e.do(ctx, func() error {
		conns = e.rt.Connections()
		return nil
	})
	return conns, err
}

// Snapshot captures the graph for persistence.
func (e *Engine) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := e.do(ctx, func() error {
		snap = e.rt.Snapshot()
		return nil
	})
	return snap, err
}

// Restore replaces the graph with a snapshot, validating it first.
func (e *Engine) Restore(ctx context.Context, snap *domain.Snapshot) error {
	return e.do(ctx, func() error { return e.rt.Restore(ctx, snap) })
}

// Pending returns the number of async computes in flight.
func (e *Engine) Pending(ctx context.Context) (int, error) {
	var n int
	err := e.do(ctx, func() error {
		n = e.rt.Pending()
		return nil
	})
	return n, err
}

// WaitIdle blocks until no async compute is in flight.
func (e *Engine) WaitIdle(ctx context.Context) error {
	var ch chan struct{}
	err := e.do(ctx, func() error {
		ch = make(chan struct{})
		if e.rt.Pending() == 0 {
			close(ch)
			return nil
		}
		e.idle = append(e.idle, ch)
		return nil
	})
	if err != nil {
		return err
	}
	select {
	case <-ch:
		return nil
	case <-e.done:
		return domain.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe streams engine events until ctx is done or the engine closes.
// Pass node ids to receive only events about those nodes.
//
// Delivery is best effort. When a subscriber's buffer (see WithEventBuffer)
// is full, events are dropped rather than stalling the engine, and that can
// include the last output event of a burst. After a drop, the stream is not
// a record of current values: read Output or Node for those.
func (e *Engine) Subscribe(ctx context.Context, nodeIDs ...string) <-chan domain.Event {
	var filter func(domain.Event) bool
	if len(nodeIDs) > 0 {
		filter = broadcast.NodeFilter(nodeIDs...)
	}
	ch, cancel := e.hub.Subscribe(e.eventBuf, filter)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-e.done:
		}
	}()
	return ch
}
