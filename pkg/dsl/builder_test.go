package dsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/nodes"
)

func TestBuilder_SimpleGraph(t *testing.T) {
	b := New()
	b.Add("c", "Constant").Config("value", 3).To("sum", "a")
	b.Add("sum", "Add").Input("b", 4).To("neg", "x")
	b.Add("neg", "Negate")

	loader, err := b.Build()
	require.NoError(t, err)

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Nodes, 3)
	assert.Equal(t, "c", snap.Nodes[0].ID)
	assert.Equal(t, "sum", snap.Nodes[1].ID)
	assert.Equal(t, 4, snap.Nodes[1].Inputs["b"])
	assert.Equal(t, []domain.Connection{
		{Source: "c", Target: "sum", Port: "a"},
		{Source: "sum", Target: "neg", Port: "x"},
	}, snap.Connections)

	require.NoError(t, b.Validate(nodes.Builtin()))
}

func TestBuilder_RunsOnEngine(t *testing.T) {
	b := New()
	b.Add("c", "Constant").Config("value", 3).To("sum", "a")
	b.Add("sum", "Add").Input("b", 4)

	ctx := context.Background()
	eng := weft.New()
	defer eng.Close()

	require.NoError(t, eng.Restore(ctx, b.Snapshot()))
	require.NoError(t, eng.WaitIdle(ctx))

	out, state, err := eng.Output(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(7), out)
	assert.Equal(t, domain.StatePopulated, state)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("conflicting re-add", func(t *testing.T) {
		b := New()
		b.Add("x", "Constant")
		b.Add("x", "Add")
		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrDuplicateNode)
	})

	t.Run("dangling connection", func(t *testing.T) {
		b := New()
		b.Add("x", "Constant").To("ghost", "a")
		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("type mismatch", func(t *testing.T) {
		b := New()
		b.Add("t", "ConstantBool").To("sum", "a")
		b.Add("sum", "Add")
		assert.ErrorIs(t, b.Validate(nodes.Builtin()), domain.ErrTypeMismatch)
	})

	t.Run("re-adding same type returns same builder", func(t *testing.T) {
		b := New()
		first := b.Add("x", "Constant")
		assert.Same(t, first, b.Add("x", "Constant"))
	})
}
