package nodes

import (
	"context"
	"errors"
	"math"

	"github.com/aretw0/weft/pkg/domain"
)

// ErrDivideByZero is returned by Divide when b is zero.
var ErrDivideByZero = errors.New("division by zero")

func mathDefinitions() []*domain.Definition {
	return []*domain.Definition{
		binaryNumber("Add", "a + b", func(a, b float64) (float64, error) { return a + b, nil }),
		binaryNumber("Subtract", "a - b", func(a, b float64) (float64, error) { return a - b, nil }),
		binaryNumber("Multiply", "a * b", func(a, b float64) (float64, error) { return a * b, nil }),
		binaryNumber("Divide", "a / b; fails when b is zero", func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, ErrDivideByZero
			}
			return a / b, nil
		}),
		unaryNumber("Double", "2x", func(x float64) float64 { return 2 * x }),
		unaryNumber("Increment", "x + 1", func(x float64) float64 { return x + 1 }),
		unaryNumber("Square", "x²", func(x float64) float64 { return x * x }),
		unaryNumber("Negate", "-x", func(x float64) float64 { return -x }),
		unaryNumber("Sin", "sin(x), x in radians", math.Sin),
	}
}

func binaryNumber(typ, desc string, fn func(a, b float64) (float64, error)) *domain.Definition {
	return &domain.Definition{
		Type:        typ,
		Description: desc,
		Category:    CategoryMath,
		Inputs: []domain.PortSpec{
			domain.In("a", domain.TypeNumber),
			domain.In("b", domain.TypeNumber),
		},
		Output: domain.Out(domain.TypeNumber),
		Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			out, err := fn(in.Number("a"), in.Number("b"))
			if err != nil {
				return nil, err
			}
			return domain.Number(out), nil
		},
	}
}

func unaryNumber(typ, desc string, fn func(x float64) float64) *domain.Definition {
	return &domain.Definition{
		Type:        typ,
		Description: desc,
		Category:    CategoryMath,
		Inputs:      []domain.PortSpec{domain.In("x", domain.TypeNumber)},
		Output:      domain.Out(domain.TypeNumber),
		Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			return domain.Number(fn(in.Number("x"))), nil
		},
	}
}
