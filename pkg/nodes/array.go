package nodes

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

type linspaceConfig struct {
	Start float64 `mapstructure:"start"`
	Stop  float64 `mapstructure:"stop"`
	Num   int     `mapstructure:"num"`
}

func arrayDefinitions() []*domain.Definition {
	return []*domain.Definition{
		Linspace(),
		{
			Type:        "ScaleArray",
			Description: "every element of x multiplied by k",
			Category:    CategoryArray,
			Inputs: []domain.PortSpec{
				domain.In("x", domain.TypeNumberArray),
				domain.In("k", domain.TypeNumber),
			},
			Output: domain.Out(domain.TypeNumberArray),
			Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
				xs, k := in.NumberArray("x"), in.Number("k")
				out := make(domain.NumberArray, len(xs))
				for i, x := range xs {
					out[i] = x * k
				}
				return out, nil
			},
		},
		{
			Type:        "Sum",
			Description: "sum of the elements of x",
			Category:    CategoryArray,
			Inputs:      []domain.PortSpec{domain.In("x", domain.TypeNumberArray)},
			Output:      domain.Out(domain.TypeNumber),
			Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
				var total float64
				for _, x := range in.NumberArray("x") {
					total += x
				}
				return domain.Number(total), nil
			},
		},
	}
}

// Linspace emits num evenly spaced samples from start to stop inclusive.
func Linspace() *domain.Definition {
	return &domain.Definition{
		Type:          "Linspace",
		Description:   "num evenly spaced numbers over [start, stop]",
		Category:      CategoryArray,
		Output:        domain.Out(domain.TypeNumberArray),
		DefaultConfig: domain.Config{"start": 0.0, "stop": 1.0, "num": 50},
		ConfigSchema: schema.Schema{
			"start": schema.Number(),
			"stop":  schema.Number(),
			"num":   schema.Int(),
		},
		Compute: func(_ context.Context, _ domain.Inputs, cfg domain.Config) (domain.Value, error) {
			var c linspaceConfig
			if err := cfg.Decode(&c); err != nil {
				return nil, err
			}
			if c.Num < 0 {
				return nil, fmt.Errorf("linspace num must not be negative, got %d", c.Num)
			}

			out := make(domain.NumberArray, c.Num)
			switch c.Num {
			case 0:
			case 1:
				out[0] = c.Start
			default:
				step := (c.Stop - c.Start) / float64(c.Num-1)
				for i := range out {
					out[i] = c.Start + step*float64(i)
				}
				out[c.Num-1] = c.Stop
			}
			return out, nil
		},
	}
}
