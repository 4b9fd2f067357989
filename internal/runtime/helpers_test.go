package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/nodes"
)

type emission struct {
	node  string
	value domain.Value
}

// recorder captures hook traffic in the order the engine produced it.
type recorder struct {
	emissions []emission
	errors    []*domain.ErrorEvent
	computes  []*domain.ComputeEvent
	states    []*domain.StateEvent
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOutputChanged: func(_ context.Context, e *domain.OutputEvent) {
			r.emissions = append(r.emissions, emission{e.NodeID, e.Value})
		},
		OnNodeError: func(_ context.Context, e *domain.ErrorEvent) {
			r.errors = append(r.errors, e)
		},
		OnCompute: func(_ context.Context, e *domain.ComputeEvent) {
			r.computes = append(r.computes, e)
		},
		OnStateChange: func(_ context.Context, e *domain.StateEvent) {
			r.states = append(r.states, e)
		},
	}
}

func (r *recorder) valuesOf(id string) []domain.Value {
	var out []domain.Value
	for _, e := range r.emissions {
		if e.node == id {
			out = append(out, e.value)
		}
	}
	return out
}

func (r *recorder) computesOf(id string) int {
	n := 0
	for _, c := range r.computes {
		if c.NodeID == id {
			n++
		}
	}
	return n
}

func newEngine(t *testing.T, opts ...runtime.Option) (*runtime.Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]runtime.Option{runtime.WithLifecycleHooks(rec.hooks())}, opts...)
	return runtime.NewEngine(nodes.Builtin(), opts...), rec
}

func mustCreate(t *testing.T, e *runtime.Engine, typ, id string, cfg domain.Config) {
	t.Helper()
	require.NoError(t, e.CreateNode(context.Background(), typ, id, cfg))
}

func mustConnect(t *testing.T, e *runtime.Engine, src, dst, port string) {
	t.Helper()
	require.NoError(t, e.Connect(context.Background(), src, dst, port))
}

func output(t *testing.T, e *runtime.Engine, id string) domain.Value {
	t.Helper()
	v, _, err := e.Output(id)
	require.NoError(t, err)
	return v
}

func state(t *testing.T, e *runtime.Engine, id string) domain.NodeState {
	t.Helper()
	_, s, err := e.Output(id)
	require.NoError(t, err)
	return s
}

// manualDispatcher queues completions until the test runs them.
type manualDispatcher struct {
	mu    sync.Mutex
	queue []func()
}

func (d *manualDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, fn)
}

// next waits for one completion to arrive and runs it on the test goroutine.
func (d *manualDispatcher) next(t *testing.T) {
	t.Helper()
	var fn func()
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.queue) == 0 {
			return false
		}
		fn, d.queue = d.queue[0], d.queue[1:]
		return true
	}, 2*time.Second, time.Millisecond)
	fn()
}

// gated returns an async definition whose compute for input x blocks until
// gates[x] is closed, then outputs 10x.
func gated(gates map[float64]chan struct{}) *domain.Definition {
	return &domain.Definition{
		Type:   "Gated",
		Inputs: []domain.PortSpec{domain.In("x", domain.TypeNumber)},
		Output: domain.Out(domain.TypeNumber),
		Async:  true,
		Compute: func(ctx context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			x := in.Number("x")
			select {
			case <-gates[x]:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return domain.Number(10 * x), nil
		},
	}
}

func gatedEngine(t *testing.T, policy runtime.ResolvePolicy, xs ...float64) (*runtime.Engine, *recorder, *manualDispatcher, map[float64]chan struct{}) {
	t.Helper()
	gates := make(map[float64]chan struct{}, len(xs))
	for _, x := range xs {
		gates[x] = make(chan struct{})
	}
	reg := nodes.Builtin()
	require.NoError(t, reg.Register(gated(gates)))

	rec := &recorder{}
	d := &manualDispatcher{}
	e := runtime.NewEngine(reg,
		runtime.WithLifecycleHooks(rec.hooks()),
		runtime.WithDispatcher(d),
		runtime.WithResolvePolicy(policy),
	)
	return e, rec, d, gates
}
