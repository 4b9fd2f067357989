package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/weft/pkg/domain"
)

// Table stores nodes in insertion order and connections in creation order.
type Table struct {
	nodes map[string]*domain.Node
	order []string
	edges []domain.Connection
}

// New returns an empty table.
func New() *Table {
	return &Table{nodes: make(map[string]*domain.Node)}
}

// Len returns the number of nodes.
func (t *Table) Len() int { return len(t.order) }

// Has reports whether a node with the id exists.
func (t *Table) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Node returns the node with the id.
func (t *Table) Node(id string) (*domain.Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// Nodes returns every node in insertion order.
func (t *Table) Nodes() []*domain.Node {
	out := make([]*domain.Node, len(t.order))
	for i, id := range t.order {
		out[i] = t.nodes[id]
	}
	return out
}

// AddNode inserts a node. It fails with ErrDuplicateNode if the id is taken,
// leaving the existing node untouched.
func (t *Table) AddNode(n *domain.Node) error {
	if t.Has(n.ID()) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID())
	}
	t.nodes[n.ID()] = n
	t.order = append(t.order, n.ID())
	return nil
}

// AddNodes inserts a batch of nodes. If any id collides with an existing node
// or with another node in the batch, nothing is inserted.
func (t *Table) AddNodes(nodes []*domain.Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if t.Has(n.ID()) || seen[n.ID()] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID())
		}
		seen[n.ID()] = true
	}
	for _, n := range nodes {
		t.nodes[n.ID()] = n
		t.order = append(t.order, n.ID())
	}
	return nil
}

// Check validates a prospective connection without applying it.
func (t *Table) Check(source, target, port string) error {
	src, err := t.Node(source)
	if err != nil {
		return err
	}
	dst, err := t.Node(target)
	if err != nil {
		return err
	}
	spec, ok := dst.Definition().Input(port)
	if !ok {
		return fmt.Errorf("%w: %s (%s) has no input %q", domain.ErrUnknownPort, target, dst.Type(), port)
	}
	if out := src.Definition().Output.DataType; out != spec.DataType {
		return fmt.Errorf("%w: %s outputs %s but %s.%s expects %s",
			domain.ErrTypeMismatch, source, out, target, port, spec.DataType)
	}
	return nil
}

// Connect adds an edge from source's output into target's input port. An
// input accepts a single connection, so any existing edge into the same port
// is replaced and returned. Reconnecting an identical edge is a no-op that
// returns (nil, nil).
func (t *Table) Connect(source, target, port string) (*domain.Connection, error) {
	if err := t.Check(source, target, port); err != nil {
		return nil, err
	}

	c := domain.Connection{Source: source, Target: target, Port: port}
	i := t.incomingIndex(target, port)
	if i >= 0 {
		prev := t.edges[i]
		if prev == c {
			return nil, nil
		}
		t.edges = slices.Delete(t.edges, i, i+1)
		t.edges = append(t.edges, c)
		return &prev, nil
	}
	t.edges = append(t.edges, c)
	return nil, nil
}

// Disconnect removes one edge and reports whether it existed.
func (t *Table) Disconnect(c domain.Connection) (bool, error) {
	if _, err := t.Node(c.Source); err != nil {
		return false, err
	}
	if _, err := t.Node(c.Target); err != nil {
		return false, err
	}
	i := slices.Index(t.edges, c)
	if i < 0 {
		return false, nil
	}
	t.edges = slices.Delete(t.edges, i, i+1)
	return true, nil
}

// DisconnectAll removes every edge touching the node and returns them in
// creation order.
func (t *Table) DisconnectAll(id string) ([]domain.Connection, error) {
	if _, err := t.Node(id); err != nil {
		return nil, err
	}
	return t.removeEdges(func(c domain.Connection) bool { return c.Touches(id) }), nil
}

// RemoveNode deletes the node and every connection referencing it. Other
// nodes are not modified; resetting the inputs it fed is the caller's job.
func (t *Table) RemoveNode(id string) (*domain.Node, []domain.Connection, error) {
	n, err := t.Node(id)
	if err != nil {
		return nil, nil, err
	}
	removed := t.removeEdges(func(c domain.Connection) bool { return c.Touches(id) })
	delete(t.nodes, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	return n, removed, nil
}

// Incoming returns the edge feeding target's port, if any.
func (t *Table) Incoming(target, port string) (domain.Connection, bool) {
	if i := t.incomingIndex(target, port); i >= 0 {
		return t.edges[i], true
	}
	return domain.Connection{}, false
}

// Outgoing returns every edge leaving source, in creation order.
func (t *Table) Outgoing(source string) []domain.Connection {
	var out []domain.Connection
	for _, c := range t.edges {
		if c.Source == source {
			out = append(out, c)
		}
	}
	return out
}

// ConnectedNodes returns the direct downstream targets of a node, one entry
// per edge, in connection creation order. A target fed on two ports appears
// twice.
func (t *Table) ConnectedNodes(id string) ([]string, error) {
	if _, err := t.Node(id); err != nil {
		return nil, err
	}
	out := []string{}
	for _, c := range t.Outgoing(id) {
		out = append(out, c.Target)
	}
	return out, nil
}

// Connections returns a copy of every edge in creation order.
func (t *Table) Connections() []domain.Connection {
	return slices.Clone(t.edges)
}

func (t *Table) incomingIndex(target, port string) int {
	return slices.IndexFunc(t.edges, func(c domain.Connection) bool {
		return c.Target == target && c.Port == port
	})
}

func (t *Table) removeEdges(match func(domain.Connection) bool) []domain.Connection {
	var removed []domain.Connection
	kept := t.edges[:0]
	for _, c := range t.edges {
		if match(c) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	t.edges = kept
	return removed
}
