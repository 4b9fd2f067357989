package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Registry is the catalog of node definitions, keyed by type tag.
// Definitions are registered at startup and read concurrently afterwards.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*domain.Definition
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*domain.Definition),
	}
}

// Register validates and adds a definition. Registering a type tag twice
// is an error.
func (r *Registry) Register(def *domain.Definition) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", domain.ErrInvalidDefinition)
	}
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %s is already registered", domain.ErrInvalidDefinition, def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(defs ...*domain.Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the definition for a type tag.
func (r *Registry) Lookup(typ string) (*domain.Definition, error) {
	r.mu.RLock()
	def, ok := r.defs[typ]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownNodeType, typ)
	}
	return def, nil
}

// Types returns every registered type tag, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Definitions returns every registered definition, sorted by type tag.
func (r *Registry) Definitions() []*domain.Definition {
	types := r.Types()
	out := make([]*domain.Definition, 0, len(types))

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range types {
		out = append(out, r.defs[t])
	}
	return out
}

// ParseInput parses a text literal for the named input of typ, using the
// port's data type to decide how the text is read.
func (r *Registry) ParseInput(typ, port, literal string) (domain.Value, error) {
	def, err := r.Lookup(typ)
	if err != nil {
		return nil, err
	}
	spec, ok := def.Input(port)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, typ, port)
	}
	return domain.ParseLiteral(spec.DataType, literal)
}

// Evaluate runs a definition's compute once, outside any graph. Raw inputs
// and config are parsed the same way as for a node instance.
func (r *Registry) Evaluate(ctx context.Context, typ string, inputs map[string]any, cfg domain.Config) (domain.Value, error) {
	def, err := r.Lookup(typ)
	if err != nil {
		return nil, err
	}

	node, err := domain.NewNode(def, typ, cfg)
	if err != nil {
		return nil, err
	}
	for name, raw := range inputs {
		spec, ok := def.Input(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownPort, typ, name)
		}
		v, err := domain.ParseValue(spec.DataType, raw)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", name, err)
		}
		if _, err := node.SetInput(name, v); err != nil {
			return nil, err
		}
	}

	v, err := node.Compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrComputeFailure, typ, err)
	}
	return v, nil
}
