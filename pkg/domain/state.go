package domain

// NodeState is the propagation state of a node instance.
type NodeState int

const (
	// StateUnpopulated means at least one input has no value.
	StateUnpopulated NodeState = iota
	// StatePopulated means the output reflects the current inputs.
	StatePopulated
	// StateComputing means a compute is in flight; the previous output is retained.
	StateComputing
	// StateError means the last compute failed; the previous output is retained.
	StateError
)

func (s NodeState) String() string {
	switch s {
	case StateUnpopulated:
		return "unpopulated"
	case StatePopulated:
		return "populated"
	case StateComputing:
		return "computing"
	case StateError:
		return "error"
	}
	return "unknown"
}

func (s NodeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
