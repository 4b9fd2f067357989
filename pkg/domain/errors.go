package domain

import "errors"

var (
	// ErrUnknownNodeType is returned when a type tag is not registered.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrDuplicateNode is returned when a node id is already in use.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrNodeNotFound is returned when an operation references a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownPort is returned when a port name is not declared by the node's definition.
	ErrUnknownPort = errors.New("unknown port")

	// ErrTypeMismatch is returned when a value or connection does not match the port data type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrComputeFailure wraps errors returned by a node's compute function.
	ErrComputeFailure = errors.New("compute failure")

	// ErrInvalidConfig is returned when node configuration fails its schema.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidDefinition is returned when registering a malformed node definition.
	ErrInvalidDefinition = errors.New("invalid node definition")

	// ErrNotPopulated is returned when computing a node with unpopulated inputs.
	ErrNotPopulated = errors.New("node not fully populated")

	ErrClosed = errors.New("engine closed")

	// ErrGraphNotFound is returned by snapshot stores for unknown graph ids.
	ErrGraphNotFound = errors.New("graph not found")
)
