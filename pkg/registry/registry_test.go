package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/domain"
)

func negate() *domain.Definition {
	return &domain.Definition{
		Type:   "Negate",
		Inputs: []domain.PortSpec{domain.In("x", domain.TypeNumber)},
		Output: domain.Out(domain.TypeNumber),
		Compute: func(_ context.Context, in domain.Inputs, _ domain.Config) (domain.Value, error) {
			return domain.Number(-in.Number("x")), nil
		},
	}
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(negate()))

	def, err := r.Lookup("Negate")
	require.NoError(t, err)
	assert.Equal(t, "Negate", def.Type)

	_, err = r.Lookup("Frobnicate")
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestRegistry_RejectsDuplicatesAndMalformed(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(negate()))
	assert.ErrorIs(t, r.Register(negate()), domain.ErrInvalidDefinition)

	bad := negate()
	bad.Type = "Broken"
	bad.Compute = nil
	assert.ErrorIs(t, r.Register(bad), domain.ErrInvalidDefinition)
	assert.ErrorIs(t, r.Register(nil), domain.ErrInvalidDefinition)

	assert.Panics(t, func() { r.MustRegister(negate()) })
}

func TestRegistry_TypesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"b", "c", "a"} {
		def := negate()
		def.Type = name
		r.MustRegister(def)
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.Types())
	assert.Len(t, r.Definitions(), 3)
}

func TestRegistry_Evaluate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(negate())

	v, err := r.Evaluate(context.Background(), "Negate", map[string]any{"x": 2.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Number(-2), v)

	_, err = r.Evaluate(context.Background(), "Negate", nil, nil)
	assert.ErrorIs(t, err, domain.ErrComputeFailure)
	assert.ErrorIs(t, err, domain.ErrNotPopulated)

	_, err = r.Evaluate(context.Background(), "Negate", map[string]any{"y": 1.0}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownPort)
}

func TestRegistry_ParseInput(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(negate())

	v, err := r.ParseInput("Negate", "x", "4")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(4), v)

	_, err = r.ParseInput("Negate", "x", "true")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	_, err = r.ParseInput("Negate", "y", "1")
	assert.ErrorIs(t, err, domain.ErrUnknownPort)

	_, err = r.ParseInput("Nope", "x", "1")
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(negate())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Lookup("Negate")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
