package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/nodes"
)

func TestRenderNodes_Plain(t *testing.T) {
	var buf bytes.Buffer
	RenderNodes(&buf, []domain.NodeView{
		{ID: "c", Type: "Constant", State: domain.StatePopulated, Output: domain.Number(10)},
		{ID: "div", Type: "Divide", State: domain.StateError, Inputs: map[string]domain.Value{
			"a": domain.Number(1), "b": domain.Number(0),
		}, Error: "division by zero"},
	}, false)

	out := buf.String()
	assert.Contains(t, out, "NODE")
	assert.Contains(t, out, "populated")
	assert.Contains(t, out, "a=1 b=0")
	assert.Contains(t, out, "- (division by zero)")
	assert.NotContains(t, out, "\x1b[", "plain output must not contain escape codes")
}

func TestRenderTypes(t *testing.T) {
	var buf bytes.Buffer
	RenderTypes(&buf, nodes.Definitions(), false)
	out := buf.String()
	assert.Contains(t, out, "Add")
	assert.Contains(t, out, "a:number b:number")
	assert.Contains(t, out, "yes")
}

func TestCatalogMarkdown(t *testing.T) {
	md := CatalogMarkdown(nodes.Definitions())
	assert.Contains(t, md, "# Node catalog")
	assert.Contains(t, md, "## math")
	assert.Contains(t, md, "### Linspace")
	assert.Contains(t, md, "config `num` (default `50`)")
	assert.Contains(t, md, "- async")

	render := NewRenderer(false)
	got, err := render(md)
	assert.NoError(t, err)
	assert.Equal(t, md, got)
}

func TestRenderOutputs(t *testing.T) {
	var buf bytes.Buffer
	RenderOutputs(&buf, []domain.NodeView{{ID: "x", Output: domain.NumberArray{1, 2}}, {ID: "y"}})
	assert.Equal(t, "x = [1, 2]\ny = -\n", buf.String())
}
