// Package cli holds the logic behind the weft commands, kept apart from the
// cobra wiring so it can be tested without a process.
package cli

import (
	"log/slog"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
)

// NewEngine builds an engine with the standard CLI conventions: the process
// logger, lifecycle logging, optional metrics and the configured policy.
func NewEngine(cfg config.Config, logger *slog.Logger, metrics *observability.Metrics) *weft.Engine {
	hooks := []domain.LifecycleHooks{observability.LoggingHooks(logger)}
	if metrics != nil {
		hooks = append(hooks, metrics.Hooks())
	}
	return weft.New(
		weft.WithLogger(logger),
		weft.WithResolvePolicy(cfg.ResolvePolicy),
		weft.WithLifecycleHooks(domain.ComposeHooks(hooks...)),
	)
}
