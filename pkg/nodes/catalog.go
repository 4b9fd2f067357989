package nodes

import (
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
)

// Categories group definitions for documentation and UIs.
const (
	CategorySource = "source"
	CategoryMath   = "math"
	CategoryLogic  = "logic"
	CategoryText   = "text"
	CategoryArray  = "array"
	CategoryTime   = "time"
)

// Definitions returns fresh copies of every builtin definition.
func Definitions() []*domain.Definition {
	defs := []*domain.Definition{
		Constant(),
		ConstantBool(),
		ConstantText(),
		Identity(),
	}
	defs = append(defs, mathDefinitions()...)
	defs = append(defs, logicDefinitions()...)
	defs = append(defs, textDefinitions()...)
	defs = append(defs, arrayDefinitions()...)
	defs = append(defs, Delay())
	return defs
}

// RegisterAll registers every builtin definition into r.
func RegisterAll(r *registry.Registry) error {
	for _, def := range Definitions() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Builtin returns a new registry holding the builtin catalog.
func Builtin() *registry.Registry {
	r := registry.NewRegistry()
	r.MustRegister(Definitions()...)
	return r
}
