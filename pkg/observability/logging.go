package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Computes and state changes go to
// Debug; failures go to Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOutputChanged: func(ctx context.Context, e *domain.OutputEvent) {
			logger.InfoContext(ctx, "output_changed",
				"node_id", e.NodeID,
				"value", domain.FormatValue(e.Value),
			)
		},
		OnNodeError: func(ctx context.Context, e *domain.ErrorEvent) {
			logger.WarnContext(ctx, "node_error", "node_id", e.NodeID, "err", e.Err)
		},
		OnStateChange: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_changed",
				"node_id", e.NodeID,
				"from", e.From.String(),
				"to", e.To.String(),
			)
		},
		OnCompute: func(ctx context.Context, e *domain.ComputeEvent) {
			logger.DebugContext(ctx, "computed",
				"node_id", e.NodeID,
				"type", e.NodeType,
				"duration", e.Duration,
				"async", e.Async,
				"stale", e.Stale,
				"failed", e.Failed,
			)
		},
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) {
			attrs := []any{"event", string(e.Type)}
			if e.NodeID != "" {
				attrs = append(attrs, "node_id", e.NodeID, "type", e.NodeType)
			}
			if e.Connection != nil {
				attrs = append(attrs, "connection", e.Connection.String())
			}
			logger.InfoContext(ctx, "graph_changed", attrs...)
		},
	}
}
