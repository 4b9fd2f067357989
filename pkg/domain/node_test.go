package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/schema"
)

func addDefinition() *Definition {
	return &Definition{
		Type:   "Add",
		Inputs: []PortSpec{In("a", TypeNumber), In("b", TypeNumber)},
		Output: Out(TypeNumber),
		Compute: func(_ context.Context, in Inputs, _ Config) (Value, error) {
			return Number(in.Number("a") + in.Number("b")), nil
		},
	}
}

func constantDefinition() *Definition {
	return &Definition{
		Type:          "Constant",
		Output:        Out(TypeNumber),
		DefaultConfig: Config{"value": 0.0},
		ConfigSchema:  schema.Schema{"value": schema.Number()},
		Compute: func(_ context.Context, _ Inputs, cfg Config) (Value, error) {
			return ParseValue(TypeNumber, cfg["value"])
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	require.NoError(t, addDefinition().Validate())
	require.NoError(t, constantDefinition().Validate())

	bad := addDefinition()
	bad.Inputs = append(bad.Inputs, In("a", TypeNumber))
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDefinition)

	bad = addDefinition()
	bad.Output.Name = "result"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDefinition)

	bad = addDefinition()
	bad.Inputs[0].DataType = "complex"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDefinition)

	bad = constantDefinition()
	bad.DefaultConfig = Config{"value": "ten"}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDefinition)
}

func TestNode_Population(t *testing.T) {
	n, err := NewNode(addDefinition(), "sum", nil)
	require.NoError(t, err)
	assert.Equal(t, StateUnpopulated, n.State())
	assert.False(t, n.IsFullyPopulated())

	_, err = n.Compute(context.Background())
	assert.ErrorIs(t, err, ErrNotPopulated)

	changed, err := n.SetInput("a", Number(3))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, n.IsFullyPopulated())

	changed, err = n.SetInput("b", Number(4))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, n.IsFullyPopulated())

	changed, err = n.SetInput("b", Number(4))
	require.NoError(t, err)
	assert.False(t, changed, "equal value must not count as a change")

	v, err := n.Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Number(7), v)
	assert.Nil(t, n.Output(), "compute must not mutate the node")

	assert.True(t, n.Resolve(v))
	assert.False(t, n.Resolve(Number(7)))
	assert.Equal(t, StatePopulated, n.State())
}

func TestNode_SetInputErrors(t *testing.T) {
	n, err := NewNode(addDefinition(), "sum", nil)
	require.NoError(t, err)

	_, err = n.SetInput("c", Number(1))
	assert.ErrorIs(t, err, ErrUnknownPort)

	_, err = n.SetInput("a", String("1"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = n.SetInput("a", nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	in, err := n.Input("a")
	require.NoError(t, err)
	assert.Nil(t, in)
}

func TestNode_ZeroInputsAlwaysPopulated(t *testing.T) {
	n, err := NewNode(constantDefinition(), "c", Config{"value": 10})
	require.NoError(t, err)
	assert.True(t, n.IsFullyPopulated())

	v, err := n.Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Number(10), v)
}

func TestNode_Config(t *testing.T) {
	_, err := NewNode(constantDefinition(), "c", Config{"value": "ten"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.NotEmpty(t, schema.ValidationErrors(err))

	_, err = NewNode(constantDefinition(), "c", Config{"other": 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewNode(addDefinition(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	n, err := NewNode(constantDefinition(), "c", nil)
	require.NoError(t, err)

	changed, err := n.SetConfig(Config{"value": 0.0})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = n.SetConfig(Config{"value": 5.0})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 5.0, n.Config()["value"])

	_, err = n.SetConfig(Config{"value": true})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNode_FailAndReset(t *testing.T) {
	n, err := NewNode(addDefinition(), "sum", nil)
	require.NoError(t, err)
	n.Resolve(Number(1))

	boom := errors.New("boom")
	n.Fail(boom)
	assert.Equal(t, StateError, n.State())
	assert.Equal(t, boom, n.Err())
	assert.Equal(t, Number(1), n.Output(), "failed compute keeps the stale output")

	assert.True(t, n.Reset())
	assert.Nil(t, n.Output())
	assert.NoError(t, n.Err())
	assert.Equal(t, StateUnpopulated, n.State())
	assert.False(t, n.Reset())
}

func TestRun_ChecksOutputType(t *testing.T) {
	def := addDefinition()
	def.Compute = func(context.Context, Inputs, Config) (Value, error) { return String("x"), nil }
	_, err := Run(context.Background(), def, Inputs{}, nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	def.Compute = func(context.Context, Inputs, Config) (Value, error) { panic("kaput") }
	_, err = Run(context.Background(), def, Inputs{}, nil)
	assert.ErrorContains(t, err, "kaput")
}

func TestConfigDecode(t *testing.T) {
	var out struct {
		Start float64 `mapstructure:"start"`
		Num   int     `mapstructure:"num"`
	}
	require.NoError(t, Config{"start": 1, "num": 4.0}.Decode(&out))
	assert.Equal(t, 1.0, out.Start)
	assert.Equal(t, 4, out.Num)
}

func TestComposeHooks(t *testing.T) {
	var calls []string
	h := ComposeHooks(
		LifecycleHooks{OnOutputChanged: func(context.Context, *OutputEvent) { calls = append(calls, "a") }},
		LifecycleHooks{},
		LifecycleHooks{OnOutputChanged: func(context.Context, *OutputEvent) { calls = append(calls, "b") }},
	)
	h.OnOutputChanged(context.Background(), &OutputEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, h.OnNodeError)
}

func TestConfig_CloneCopiesArrays(t *testing.T) {
	weights := []float64{1, 2}
	anys := []any{1.0}
	orig := Config{"weights": weights, "anys": anys, "arr": NumberArray{3}}

	clone := orig.Clone()
	clone["weights"].([]float64)[0] = 9
	clone["anys"].([]any)[0] = 9.0
	clone["arr"].(NumberArray)[0] = 9
	assert.Equal(t, []float64{1, 2}, weights)
	assert.Equal(t, []any{1.0}, anys)
	assert.Equal(t, NumberArray{3}, orig["arr"])

	patch := Config{"weights": []float64{4}}
	merged := Config{}.Merge(patch)
	merged["weights"].([]float64)[0] = 0
	assert.Equal(t, []float64{4}, patch["weights"])
}
