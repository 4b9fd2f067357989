package domain

import (
	"context"
	"fmt"
	"maps"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/weft/pkg/schema"
)

// ComputeFunc derives a node's output from its populated inputs and config.
// It must be deterministic in (inputs, config). Async definitions run it on
// a separate goroutine, so it must not touch shared state.
type ComputeFunc func(ctx context.Context, in Inputs, cfg Config) (Value, error)

// Definition is the catalog entry for a node kind.
type Definition struct {
	Type          string
	Description   string
	Category      string
	Inputs        []PortSpec
	Output        PortSpec
	DefaultConfig Config
	ConfigSchema  schema.Schema
	// Async marks definitions whose compute runs off the engine goroutine.
	Async   bool
	Compute ComputeFunc
}

// Input returns the input port spec with the given name.
func (d *Definition) Input(name string) (PortSpec, bool) {
	for _, p := range d.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// Validate checks that the definition is well formed.
func (d *Definition) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("%w: empty type tag", ErrInvalidDefinition)
	}
	if d.Compute == nil {
		return fmt.Errorf("%w: %s has no compute function", ErrInvalidDefinition, d.Type)
	}
	if d.Output.Name != OutputPort || d.Output.Direction != DirectionOut {
		return fmt.Errorf("%w: %s output must be an out port named %q", ErrInvalidDefinition, d.Type, OutputPort)
	}
	if !d.Output.DataType.Valid() {
		return fmt.Errorf("%w: %s output has data type %q", ErrInvalidDefinition, d.Type, d.Output.DataType)
	}

	seen := make(map[string]bool, len(d.Inputs))
	for _, p := range d.Inputs {
		switch {
		case p.Name == "":
			return fmt.Errorf("%w: %s has an unnamed input", ErrInvalidDefinition, d.Type)
		case seen[p.Name]:
			return fmt.Errorf("%w: %s declares input %q twice", ErrInvalidDefinition, d.Type, p.Name)
		case p.Direction != DirectionIn:
			return fmt.Errorf("%w: %s input %q is not an in port", ErrInvalidDefinition, d.Type, p.Name)
		case !p.DataType.Valid():
			return fmt.Errorf("%w: %s input %q has data type %q", ErrInvalidDefinition, d.Type, p.Name, p.DataType)
		}
		seen[p.Name] = true
	}

	if err := schema.Validate(d.ConfigSchema, d.DefaultConfig); err != nil {
		return fmt.Errorf("%w: %s default config: %w", ErrInvalidDefinition, d.Type, err)
	}
	return nil
}

// Inputs holds the populated input values passed to a compute function.
type Inputs map[string]Value

// Number returns the named input as a float64, or 0 if it is not a Number.
func (in Inputs) Number(name string) float64 {
	v, _ := in[name].(Number)
	return float64(v)
}

func (in Inputs) Boolean(name string) bool {
	v, _ := in[name].(Boolean)
	return bool(v)
}

func (in Inputs) String(name string) string {
	v, _ := in[name].(String)
	return string(v)
}

func (in Inputs) NumberArray(name string) []float64 {
	v, _ := in[name].(NumberArray)
	return v
}

// Config is a node's configuration map.
type Config map[string]any

// Clone returns a shallow copy of c. Slice values are copied as well so the
// clone can be mutated freely.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for k, v := range c {
		switch xs := v.(type) {
		case []any:
			v = append([]any(nil), xs...)
		case []float64:
			v = append([]float64(nil), xs...)
		case NumberArray:
			v = xs.clone()
		}
		out[k] = v
	}
	return out
}

// Merge returns c overlaid with patch.
func (c Config) Merge(patch Config) Config {
	out := c.Clone()
	maps.Copy(out, patch.Clone())
	return out
}

// Equal reports deep equality of two configs.
func (c Config) Equal(other Config) bool {
	if len(c) != len(other) {
		return false
	}
	return reflect.DeepEqual(map[string]any(c), map[string]any(other))
}

// Decode maps the config onto a struct with mapstructure tags.
func (c Config) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(c))
}
