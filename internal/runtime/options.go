package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
)

// ResolvePolicy decides which async result wins when several computes for
// the same node are in flight.
type ResolvePolicy int

const (
	// ResolveLatestIssued applies only the result of the most recently issued
	// compute; older results are discarded when they arrive.
	ResolveLatestIssued ResolvePolicy = iota
	// ResolveLatestResolved applies every result in arrival order, so a slow
	// stale compute can overwrite a newer one.
	ResolveLatestResolved
)

func (p ResolvePolicy) String() string {
	if p == ResolveLatestResolved {
		return "latest-resolved"
	}
	return "latest-issued"
}

// ParseResolvePolicy accepts "latest-issued" or "latest-resolved".
func ParseResolvePolicy(s string) (ResolvePolicy, bool) {
	switch s {
	case "", "latest-issued":
		return ResolveLatestIssued, true
	case "latest-resolved":
		return ResolveLatestResolved, true
	}
	return ResolveLatestIssued, false
}

// Dispatcher hands a completion back to the goroutine that owns the engine.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLifecycleHooks adds observability callbacks. It may be given more than once.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.ComposeHooks(e.hooks, h)
	}
}

func WithResolvePolicy(p ResolvePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithDispatcher replaces the built-in completion queue. Poll and Wait only
// work with the built-in queue.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
		e.mailbox = nil
	}
}

// WithAsyncContext sets the context passed to async computes. Cancelling it
// aborts computes that honor their context.
func WithAsyncContext(ctx context.Context) Option {
	return func(e *Engine) { e.asyncCtx = ctx }
}

func defaultLogger() *slog.Logger { return logging.NewNop() }
