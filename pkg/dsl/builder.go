package dsl

import (
	"fmt"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/graph"
	"github.com/aretw0/weft/pkg/registry"
)

// Builder manages the graph construction. Nodes keep the order in which
// they were first added.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
	conns []domain.Connection
	errs  []error
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a node of the given type. If the node already exists, the
// existing builder is returned; re-adding with a different type is recorded
// as an error reported by Build.
func (b *Builder) Add(id, typ string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		if nb.rec.Type != typ {
			b.errs = append(b.errs, fmt.Errorf("%w: node %q re-added as %q (was %q)",
				domain.ErrDuplicateNode, id, typ, nb.rec.Type))
		}
		return nb
	}
	nb := &NodeBuilder{
		rec:     domain.NodeRecord{ID: id, Type: typ},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Connect wires source's output into target's input port.
func (b *Builder) Connect(source, target, port string) *Builder {
	b.conns = append(b.conns, domain.Connection{Source: source, Target: target, Port: port})
	return b
}

// Snapshot assembles the declared graph without checking it.
func (b *Builder) Snapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Nodes:       make([]domain.NodeRecord, 0, len(b.order)),
		Connections: append([]domain.Connection{}, b.conns...),
	}
	for _, id := range b.order {
		snap.Nodes = append(snap.Nodes, b.nodes[id].Build())
	}
	return snap.Clone()
}

// Build checks that every connection names declared nodes and compiles
// the graph into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	for _, c := range b.conns {
		for _, id := range []string{c.Source, c.Target} {
			if _, ok := b.nodes[id]; !ok {
				return nil, fmt.Errorf("%w: connection %s references %q", domain.ErrNodeNotFound, c, id)
			}
		}
	}
	snap := b.Snapshot()
	loader, err := memory.NewFromRecords(snap.Nodes, snap.Connections...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// Validate builds the graph and checks it against a node catalog: known
// types, valid config, well-typed inputs and compatible connections.
func (b *Builder) Validate(reg *registry.Registry) error {
	if _, err := b.Build(); err != nil {
		return err
	}
	return graph.Validate(reg, b.Snapshot())
}
