package graph

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
)

// Snapshot captures the table as a persistable record. Only inputs that are
// not fed by a connection are recorded; connected inputs are re-derived when
// the snapshot is restored.
func (t *Table) Snapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Nodes:       make([]domain.NodeRecord, 0, len(t.order)),
		Connections: t.Connections(),
	}
	for _, n := range t.Nodes() {
		rec := domain.NodeRecord{ID: n.ID(), Type: n.Type()}
		if cfg := n.Config(); len(cfg) > 0 {
			rec.Config = cfg
		}
		for name, v := range n.Inputs() {
			if _, fed := t.Incoming(n.ID(), name); fed {
				continue
			}
			if rec.Inputs == nil {
				rec.Inputs = make(map[string]any)
			}
			rec.Inputs[name] = v.Raw()
		}
		snap.Nodes = append(snap.Nodes, rec)
	}
	return snap
}

// FromSnapshot rebuilds a table from a snapshot without computing anything.
// It applies the same checks as interactive construction: known node types,
// unique ids, valid config, well-typed inputs and compatible connections.
// The first failure is returned.
func FromSnapshot(reg *registry.Registry, snap *domain.Snapshot) (*Table, error) {
	t := New()
	if snap == nil {
		return t, nil
	}

	nodes := make([]*domain.Node, 0, len(snap.Nodes))
	for _, rec := range snap.Nodes {
		n, err := NodeFromRecord(reg, rec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := t.AddNodes(nodes); err != nil {
		return nil, err
	}

	for _, c := range snap.Connections {
		if _, err := t.Connect(c.Source, c.Target, c.Port); err != nil {
			return nil, fmt.Errorf("connection %s: %w", c, err)
		}
	}
	return t, nil
}

// NodeFromRecord instantiates a node from its persisted record, parsing the
// recorded input values.
func NodeFromRecord(reg *registry.Registry, rec domain.NodeRecord) (*domain.Node, error) {
	def, err := reg.Lookup(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", rec.ID, err)
	}
	n, err := domain.NewNode(def, rec.ID, rec.Config)
	if err != nil {
		return nil, err
	}
	for name, raw := range rec.Inputs {
		v, err := ParseInput(n, name, raw)
		if err != nil {
			return nil, err
		}
		if _, err := n.SetInput(name, v); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// ParseInput converts a raw decoded value into a Value for the node's input port.
func ParseInput(n *domain.Node, port string, raw any) (domain.Value, error) {
	spec, ok := n.Definition().Input(port)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s) has no input %q", domain.ErrUnknownPort, n.ID(), n.Type(), port)
	}
	v, err := domain.ParseValue(spec.DataType, raw)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", n.ID(), port, err)
	}
	return v, nil
}

// Validate checks a snapshot without keeping the resulting table.
func Validate(reg *registry.Registry, snap *domain.Snapshot) error {
	_, err := FromSnapshot(reg, snap)
	return err
}
