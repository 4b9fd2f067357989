package nodes

import (
	"context"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

type delayConfig struct {
	Millis int `mapstructure:"ms"`
}

// Delay echoes x after sleeping for the configured number of milliseconds.
// It is the catalog's async node: the engine keeps processing other writes
// while it sleeps.
func Delay() *domain.Definition {
	return &domain.Definition{
		Type:          "Delay",
		Description:   "x, after ms milliseconds",
		Category:      CategoryTime,
		Inputs:        []domain.PortSpec{domain.In("x", domain.TypeNumber)},
		Output:        domain.Out(domain.TypeNumber),
		DefaultConfig: domain.Config{"ms": 100},
		ConfigSchema:  schema.Schema{"ms": schema.Int()},
		Async:         true,
		Compute: func(ctx context.Context, in domain.Inputs, cfg domain.Config) (domain.Value, error) {
			var c delayConfig
			if err := cfg.Decode(&c); err != nil {
				return nil, err
			}

			timer := time.NewTimer(time.Duration(c.Millis) * time.Millisecond)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
				return in["x"], nil
			}
		},
	}
}
