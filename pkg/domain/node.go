package domain

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/pkg/schema"
)

// Node is the mutable runtime state of one node. It is not safe for
// concurrent use; the runtime engine owns every Node it creates.
type Node struct {
	id     string
	def    *Definition
	inputs map[string]Value
	output Value
	config Config
	state  NodeState
	err    error
}

// NewNode instantiates def under id. Overrides are merged over the
// definition's default config and validated against its schema. Id
// uniqueness is the graph's concern, not the node's.
func NewNode(def *Definition, id string, overrides Config) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty node id", ErrInvalidConfig)
	}
	cfg := def.DefaultConfig.Merge(overrides)
	if err := schema.Validate(def.ConfigSchema, cfg); err != nil {
		return nil, fmt.Errorf("%w: node %q: %w", ErrInvalidConfig, id, err)
	}
	return &Node{
		id:     id,
		def:    def,
		inputs: make(map[string]Value, len(def.Inputs)),
		config: cfg,
	}, nil
}

func (n *Node) ID() string              { return n.id }
func (n *Node) Type() string            { return n.def.Type }
func (n *Node) Definition() *Definition { return n.def }
func (n *Node) Output() Value           { return CloneValue(n.output) }
func (n *Node) State() NodeState        { return n.state }

// Err returns the error from the last failed compute, if the node is in StateError.
func (n *Node) Err() error { return n.err }

// Config returns a copy of the node's configuration.
func (n *Node) Config() Config { return n.config.Clone() }

// Input returns the current value of an input, nil when unpopulated.
func (n *Node) Input(name string) (Value, error) {
	if _, ok := n.def.Input(name); !ok {
		return nil, n.unknownPort(name)
	}
	return CloneValue(n.inputs[name]), nil
}

// Inputs returns a copy of the populated inputs.
func (n *Node) Inputs() Inputs {
	out := make(Inputs, len(n.inputs))
	for k, v := range n.inputs {
		out[k] = CloneValue(v)
	}
	return out
}

// SetInput stores a value on an input port and reports whether the stored
// value changed. The first population of a port always counts as a change.
func (n *Node) SetInput(name string, v Value) (bool, error) {
	spec, ok := n.def.Input(name)
	if !ok {
		return false, n.unknownPort(name)
	}
	if v == nil {
		return false, fmt.Errorf("%w: nil value for %s.%s", ErrTypeMismatch, n.id, name)
	}
	if v.DataType() != spec.DataType {
		return false, fmt.Errorf("%w: %s.%s expects %s, got %s", ErrTypeMismatch, n.id, name, spec.DataType, v.DataType())
	}
	if ValuesEqual(n.inputs[name], v) {
		return false, nil
	}
	n.inputs[name] = CloneValue(v)
	return true, nil
}

// ClearInput resets an input to unpopulated and reports whether it held a value.
func (n *Node) ClearInput(name string) (bool, error) {
	if _, ok := n.def.Input(name); !ok {
		return false, n.unknownPort(name)
	}
	if _, had := n.inputs[name]; !had {
		return false, nil
	}
	delete(n.inputs, name)
	return true, nil
}

// IsFullyPopulated reports whether every declared input holds a value.
// A node with no inputs is always fully populated.
func (n *Node) IsFullyPopulated() bool {
	for _, p := range n.def.Inputs {
		if _, ok := n.inputs[p.Name]; !ok {
			return false
		}
	}
	return true
}

// SetConfig merges a config patch and reports whether the effective config changed.
func (n *Node) SetConfig(patch Config) (bool, error) {
	if err := schema.ValidatePartial(n.def.ConfigSchema, patch); err != nil {
		return false, fmt.Errorf("%w: node %q: %w", ErrInvalidConfig, n.id, err)
	}
	next := n.config.Merge(patch)
	if next.Equal(n.config) {
		return false, nil
	}
	n.config = next
	return true, nil
}

// Compute runs the definition's compute function against the current inputs
// and config. It does not modify the node; callers apply the outcome with
// Resolve or Fail. Results of the wrong data type are reported as errors.
func (n *Node) Compute(ctx context.Context) (Value, error) {
	if !n.IsFullyPopulated() {
		return nil, fmt.Errorf("%w: %s", ErrNotPopulated, n.id)
	}
	return Run(ctx, n.def, n.Inputs(), n.config.Clone())
}

// Run invokes def.Compute, converting panics to errors and checking the
// result type. It is safe to call from any goroutine given private copies
// of inputs and config.
func Run(ctx context.Context, def *Definition, in Inputs, cfg Config) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%s panicked: %v", def.Type, r)
		}
	}()

	v, err = def.Compute(ctx, in, cfg)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s produced no value", ErrTypeMismatch, def.Type)
	}
	if v.DataType() != def.Output.DataType {
		return nil, fmt.Errorf("%w: %s produced %s, want %s", ErrTypeMismatch, def.Type, v.DataType(), def.Output.DataType)
	}
	return v, nil
}

// MarkComputing moves the node into StateComputing.
func (n *Node) MarkComputing() {
	n.state = StateComputing
	n.err = nil
}

// Resolve stores a compute result and reports whether the output changed.
func (n *Node) Resolve(v Value) bool {
	changed := !ValuesEqual(n.output, v)
	n.output = CloneValue(v)
	n.state = StatePopulated
	n.err = nil
	return changed
}

// Fail records a compute error. The previous output is kept as a stale value.
func (n *Node) Fail(err error) {
	n.state = StateError
	n.err = err
}

// Reset drops the output and returns the node to StateUnpopulated. It
// reports whether an output was dropped.
func (n *Node) Reset() bool {
	had := n.output != nil
	n.output = nil
	n.state = StateUnpopulated
	n.err = nil
	return had
}

func (n *Node) unknownPort(name string) error {
	return fmt.Errorf("%w: %s (%s) has no input %q", ErrUnknownPort, n.id, n.def.Type, name)
}

// NodeView is a read-only copy of a node's state, suitable for encoding.
type NodeView struct {
	ID     string           `json:"id"`
	Type   string           `json:"type"`
	State  NodeState        `json:"state"`
	Inputs map[string]Value `json:"inputs"`
	Output Value            `json:"output"`
	Config Config           `json:"config,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// View copies the node's current state.
func (n *Node) View() NodeView {
	v := NodeView{
		ID:     n.id,
		Type:   n.def.Type,
		State:  n.state,
		Inputs: n.Inputs(),
		Output: n.Output(),
		Config: n.Config(),
	}
	if n.err != nil {
		v.Error = n.err.Error()
	}
	return v
}
