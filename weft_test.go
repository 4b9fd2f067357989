package weft_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
)

func newEngine(t *testing.T, opts ...weft.Option) *weft.Engine {
	t.Helper()
	e := weft.New(opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngine_EndToEnd(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.CreateNode(ctx, "Constant", "c1", domain.Config{"value": 5})
	require.NoError(t, err)
	_, err = e.CreateNode(ctx, "Constant", "c2", domain.Config{"value": 7})
	require.NoError(t, err)
	_, err = e.CreateNode(ctx, "Double", "double", nil)
	require.NoError(t, err)
	_, err = e.CreateNode(ctx, "Add", "sum", nil)
	require.NoError(t, err)

	require.NoError(t, e.Connect(ctx, "c1", "double", "x"))
	require.NoError(t, e.Connect(ctx, "double", "sum", "a"))
	require.NoError(t, e.Connect(ctx, "c2", "sum", "b"))

	v, state, err := e.Output(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(17), v)
	assert.Equal(t, domain.StatePopulated, state)

	require.NoError(t, e.SetConfig(ctx, "c2", domain.Config{"value": 9}))
	v, _, err = e.Output(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(19), v)

	targets, err := e.ConnectedNodes(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, []string{"sum"}, targets)
}

func TestEngine_GeneratesIDs(t *testing.T) {
	e := newEngine(t)
	id, err := e.CreateNode(context.Background(), "Add", "", nil)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	_, err = e.Node(context.Background(), id)
	assert.NoError(t, err)
}

func TestEngine_AsyncWaitIdle(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := e.CreateNode(ctx, "Delay", "delay", domain.Config{"ms": 50})
	require.NoError(t, err)
	_, err = e.CreateNode(ctx, "Square", "sq", nil)
	require.NoError(t, err)
	require.NoError(t, e.Connect(ctx, "delay", "sq", "x"))

	require.NoError(t, e.SetInput(ctx, "delay", "x", domain.Number(3)))
	_, state, err := e.Output(ctx, "delay")
	require.NoError(t, err)
	assert.Equal(t, domain.StateComputing, state)

	require.NoError(t, e.WaitIdle(ctx))
	v, _, err := e.Output(ctx, "sq")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(9), v)

	n, err := e.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, e.WaitIdle(ctx), "waiting on an idle engine returns immediately")
}

func TestEngine_Subscribe(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := e.Subscribe(ctx, "sum")

	_, err := e.CreateNode(ctx, "Add", "sum", nil)
	require.NoError(t, err)
	require.NoError(t, e.SetInput(ctx, "sum", "a", domain.Number(1)))
	require.NoError(t, e.SetInput(ctx, "sum", "b", domain.Number(2)))

	var outputs []domain.Value
	timeout := time.After(2 * time.Second)
	for len(outputs) < 1 {
		select {
		case ev := <-events:
			if out, ok := ev.(*domain.OutputEvent); ok {
				outputs = append(outputs, out.Value)
			}
		case <-timeout:
			t.Fatal("timed out waiting for output event")
		}
	}
	assert.Equal(t, []domain.Value{domain.Number(3)}, outputs)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestEngine_SubscribeDropsButOutputIsCurrent(t *testing.T) {
	e := newEngine(t, weft.WithEventBuffer(1))
	ctx := context.Background()

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := e.Subscribe(subCtx, "c")

	_, err := e.CreateNode(ctx, "Constant", "c", domain.Config{"value": 0})
	require.NoError(t, err)
	for i := 1; i <= 20; i++ {
		require.NoError(t, e.SetConfig(ctx, "c", domain.Config{"value": i}))
	}
	require.NoError(t, e.WaitIdle(ctx))

	v, _, err := e.Output(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(20), v)

	buffered := 0
	for len(events) > 0 {
		<-events
		buffered++
	}
	assert.LessOrEqual(t, buffered, 1)
}

func TestEngine_Hooks(t *testing.T) {
	var mu sync.Mutex
	var errs []string
	e := newEngine(t, weft.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeError: func(_ context.Context, ev *domain.ErrorEvent) {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, ev.NodeID)
		},
	}))
	ctx := context.Background()

	_, err := e.CreateNode(ctx, "Divide", "div", nil)
	require.NoError(t, err)
	require.NoError(t, e.SetInputRaw(ctx, "div", "a", 1.0))
	require.NoError(t, e.SetInputRaw(ctx, "div", "b", 0.0))

	_, state, err := e.Output(ctx, "div")
	require.NoError(t, err)
	assert.Equal(t, domain.StateError, state)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"div"}, errs)
}

func TestEngine_ConcurrentCallers(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	_, err := e.CreateNode(ctx, "Add", "sum", nil)
	require.NoError(t, err)
	require.NoError(t, e.SetInput(ctx, "sum", "b", domain.Number(0)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, e.SetInput(ctx, "sum", "a", domain.Number(float64(i))))
		}(i)
	}
	wg.Wait()

	v, state, err := e.Output(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, domain.StatePopulated, state)
	assert.NotNil(t, v)
}

func TestEngine_SnapshotRestore(t *testing.T) {
	src := newEngine(t)
	ctx := context.Background()
	_, err := src.CreateNode(ctx, "Linspace", "xs", domain.Config{"start": 0, "stop": 2, "num": 3})
	require.NoError(t, err)
	_, err = src.CreateNode(ctx, "Sum", "total", nil)
	require.NoError(t, err)
	require.NoError(t, src.Connect(ctx, "xs", "total", "x"))

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)

	dst := newEngine(t)
	require.NoError(t, dst.Restore(ctx, snap))
	v, _, err := dst.Output(ctx, "total")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(3), v)
}

func TestEngine_Close(t *testing.T) {
	e := weft.New()
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err := e.CreateNode(context.Background(), "Add", "x", nil)
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, e.WaitIdle(context.Background()), domain.ErrClosed)
}

func TestEngine_ContextCancelled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Nodes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
