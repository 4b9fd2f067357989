package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/adapters/loam"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

func seed(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoader_Contract(t *testing.T) {
	dir := seed(t, map[string]string{
		"c.md": `---
type: Constant
config:
  value: 3
wires:
  - to: sum
    port: a
---
A constant feeding the adder.`,
		"sum.md": `---
id: sum
type: Add
inputs:
  b: 4
---`,
	})

	loader, err := loam.Open(dir)
	require.NoError(t, err)

	ports.RunGraphLoaderContract(t, loader, &domain.Snapshot{
		Nodes: []domain.NodeRecord{
			{ID: "c", Type: "Constant"},
			{ID: "sum", Type: "Add", Inputs: map[string]any{"b": 4}},
		},
		Connections: []domain.Connection{{Source: "c", Target: "sum", Port: "a"}},
	})
}

func TestLoader_NormalizesIDs(t *testing.T) {
	dir := seed(t, map[string]string{
		"start.md": `---
id: start.md
type: Constant
---`,
		"neg.json": `{"id": "neg.json", "type": "Negate"}`,
		"implicit.md": `---
type: Double
wires:
  - to: neg.json
    port: x
---`,
	})

	loader, err := loam.Open(dir)
	require.NoError(t, err)

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"implicit", "neg", "start"}, ids)
	assert.Equal(t, []domain.Connection{{Source: "implicit", Target: "neg", Port: "x"}}, snap.Connections)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	dir := seed(t, map[string]string{
		"foo.md": `---
id: foo
type: Constant
---`,
		"foo.json": `{"id": "foo", "type": "Constant"}`,
	})

	loader, err := loam.Open(dir)
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrDuplicateNode)
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_RequiresType(t *testing.T) {
	dir := seed(t, map[string]string{"untyped.md": "---\nid: untyped\n---\nbody"})

	loader, err := loam.Open(dir)
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
}
