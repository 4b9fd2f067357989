package nodes

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

func logicDefinitions() []*domain.Definition {
	not := &domain.Definition{
		Type:        "Not",
		Description: "!a",
		Category:    CategoryLogic,
		Inputs:      []domain.PortSpec{domain.In("a", domain.TypeBoolean)},
		Output:      domain.Out(domain.TypeBoolean),
		Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			return domain.Boolean(!in.Boolean("a")), nil
		},
	}

	return []*domain.Definition{
		not,
		binaryBool("And", "a && b", func(a, b bool) bool { return a && b }),
		binaryBool("Or", "a || b", func(a, b bool) bool { return a || b }),
		binaryBool("Xor", "a != b", func(a, b bool) bool { return a != b }),
		binaryBool("Nand", "!(a && b)", func(a, b bool) bool { return !(a && b) }),
		binaryBool("Nor", "!(a || b)", func(a, b bool) bool { return !(a || b) }),
	}
}

func binaryBool(typ, desc string, fn func(a, b bool) bool) *domain.Definition {
	return &domain.Definition{
		Type:        typ,
		Description: desc,
		Category:    CategoryLogic,
		Inputs: []domain.PortSpec{
			domain.In("a", domain.TypeBoolean),
			domain.In("b", domain.TypeBoolean),
		},
		Output: domain.Out(domain.TypeBoolean),
		Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			return domain.Boolean(fn(in.Boolean("a"), in.Boolean("b"))), nil
		},
	}
}
