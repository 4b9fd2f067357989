package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/ports"
)

// Assignment is a parsed `node.port=value` flag.
type Assignment struct {
	Node    string
	Port    string
	Literal string
}

// ParseAssignment parses `node.port=value`. The value stays text until Apply
// reads it against the port's data type. The node id may itself contain
// dots; the port is everything after the last one.
func ParseAssignment(s string) (Assignment, error) {
	target, literal, ok := strings.Cut(s, "=")
	if !ok {
		return Assignment{}, fmt.Errorf("invalid assignment %q: want node.port=value", s)
	}
	dot := strings.LastIndex(target, ".")
	if dot <= 0 || dot == len(target)-1 {
		return Assignment{}, fmt.Errorf("invalid assignment %q: want node.port=value", s)
	}
	return Assignment{Node: target[:dot], Port: target[dot+1:], Literal: literal}, nil
}

// ParseAssignments parses every flag value, stopping at the first error.
func ParseAssignments(in []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(in))
	for _, s := range in {
		a, err := ParseAssignment(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Apply sets every assignment on the engine in order.
func Apply(ctx context.Context, eng ports.GraphEngine, as []Assignment) error {
	for _, a := range as {
		view, err := eng.Node(ctx, a.Node)
		if err != nil {
			return fmt.Errorf("set %s.%s: %w", a.Node, a.Port, err)
		}
		v, err := eng.Registry().ParseInput(view.Type, a.Port, a.Literal)
		if err != nil {
			return fmt.Errorf("set %s.%s: %w", a.Node, a.Port, err)
		}
		if err := eng.SetInputRaw(ctx, a.Node, a.Port, v); err != nil {
			return fmt.Errorf("set %s.%s: %w", a.Node, a.Port, err)
		}
	}
	return nil
}
