package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	eng := weft.New(weft.WithLifecycleHooks(m.Hooks()))
	defer eng.Close()

	_, err = eng.CreateNode(ctx, "Constant", "c", domain.Config{"value": 1.0})
	require.NoError(t, err)
	_, err = eng.CreateNode(ctx, "Divide", "div", nil)
	require.NoError(t, err)
	require.NoError(t, eng.SetInputRaw(ctx, "div", "b", 0))
	require.NoError(t, eng.Connect(ctx, "c", "div", "a"))
	require.NoError(t, eng.WaitIdle(ctx))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeErrors.WithLabelValues("div")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Computes.WithLabelValues("Divide", "false", "true")))

	require.NoError(t, eng.RemoveNode(ctx, "c"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connections))

	// Registering twice on the same registry fails.
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatJSON)

	ctx := context.Background()
	eng := weft.New(weft.WithLifecycleHooks(observability.LoggingHooks(logger)))
	defer eng.Close()

	_, err := eng.CreateNode(ctx, "Constant", "c", nil)
	require.NoError(t, err)
	require.NoError(t, eng.WaitIdle(ctx))

	out := buf.String()
	assert.Contains(t, out, `"msg":"graph_changed"`)
	assert.Contains(t, out, `"msg":"output_changed"`)
	assert.Contains(t, out, `"value":"10"`)
}
