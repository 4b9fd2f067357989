package nodes

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// maxRepeat bounds Repeat so a stray input cannot allocate unbounded memory.
const maxRepeat = 1 << 16

func textDefinitions() []*domain.Definition {
	return []*domain.Definition{
		{
			Type:        "Repeat",
			Description: "c repeated n times; n must be a non-negative whole number",
			Category:    CategoryText,
			Inputs: []domain.PortSpec{
				domain.In("c", domain.TypeString),
				domain.In("n", domain.TypeNumber),
			},
			Output: domain.Out(domain.TypeString),
			Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
				n := in.Number("n")
				if n < 0 || n != math.Trunc(n) || n > maxRepeat {
					return nil, fmt.Errorf("repeat count %v out of range [0, %d]", n, maxRepeat)
				}
				return domain.String(strings.Repeat(in.String("c"), int(n))), nil
			},
		},
		{
			Type:        "Concat",
			Description: "a followed by b",
			Category:    CategoryText,
			Inputs: []domain.PortSpec{
				domain.In("a", domain.TypeString),
				domain.In("b", domain.TypeString),
			},
			Output: domain.Out(domain.TypeString),
			Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
				return domain.String(in.String("a") + in.String("b")), nil
			},
		},
	}
}
