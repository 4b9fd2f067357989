package dsl

import "github.com/aretw0/weft/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	rec     domain.NodeRecord
	builder *Builder
}

// Config sets one configuration key.
func (n *NodeBuilder) Config(key string, value any) *NodeBuilder {
	if n.rec.Config == nil {
		n.rec.Config = make(map[string]any)
	}
	n.rec.Config[key] = value
	return n
}

// Input sets a free input value.
func (n *NodeBuilder) Input(port string, value any) *NodeBuilder {
	if n.rec.Inputs == nil {
		n.rec.Inputs = make(map[string]any)
	}
	n.rec.Inputs[port] = value
	return n
}

// To wires this node's output into target's input port.
func (n *NodeBuilder) To(target, port string) *NodeBuilder {
	n.builder.Connect(n.rec.ID, target, port)
	return n
}

// Build returns the node's record.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.NodeRecord {
	return n.rec
}
