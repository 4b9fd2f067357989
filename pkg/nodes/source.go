package nodes

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

// Constant emits its configured number. It has no inputs, so it computes as
// soon as it is created and again whenever its config changes.
func Constant() *domain.Definition {
	return constantOf("Constant", domain.TypeNumber, 10.0, "Emits the configured number.")
}

func ConstantBool() *domain.Definition {
	return constantOf("ConstantBool", domain.TypeBoolean, false, "Emits the configured boolean.")
}

func ConstantText() *domain.Definition {
	return constantOf("ConstantText", domain.TypeString, "", "Emits the configured string.")
}

func constantOf(typ string, dt domain.DataType, zero any, desc string) *domain.Definition {
	return &domain.Definition{
		Type:          typ,
		Description:   desc,
		Category:      CategorySource,
		Output:        domain.Out(dt),
		DefaultConfig: domain.Config{"value": zero},
		ConfigSchema:  schema.Schema{"value": dt.Schema()},
		Compute: func(_ context.Context, _ domain.Inputs, cfg domain.Config) (domain.Value, error) {
			return domain.ParseValue(dt, cfg["value"])
		},
	}
}

// Identity forwards its input unchanged.
func Identity() *domain.Definition {
	return &domain.Definition{
		Type:        "Identity",
		Description: "Forwards x unchanged.",
		Category:    CategorySource,
		Inputs:      []domain.PortSpec{domain.In("x", domain.TypeNumber)},
		Output:      domain.Out(domain.TypeNumber),
		Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			return in["x"], nil
		},
	}
}
