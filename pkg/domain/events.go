package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventOutputChanged EventType = "output_changed"
	EventNodeError     EventType = "node_error"
	EventStateChanged  EventType = "state_changed"
	EventComputed      EventType = "computed"
	EventNodeAdded     EventType = "node_added"
	EventNodeRemoved   EventType = "node_removed"
	EventConnected     EventType = "connected"
	EventDisconnected  EventType = "disconnected"
)

// Event is implemented by every event emitted by the engine.
type Event interface {
	Kind() EventType
}

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

func (b EventBase) Kind() EventType { return b.Type }

// NewBase stamps an event header with the current time.
func NewBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// OutputEvent reports a node output change. Value is nil when the output
// was dropped because an input became unpopulated.
type OutputEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Value  Value  `json:"value"`
}

// ErrorEvent reports a failed compute.
type ErrorEvent struct {
	EventBase
	NodeID  string `json:"node_id"`
	Err     error  `json:"-"`
	Message string `json:"error"`
}

// StateEvent reports a node state transition.
type StateEvent struct {
	EventBase
	NodeID string    `json:"node_id"`
	From   NodeState `json:"from"`
	To     NodeState `json:"to"`
}

// ComputeEvent reports a finished compute, successful or not.
type ComputeEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	NodeType string        `json:"node_type"`
	Duration time.Duration `json:"duration"`
	Async    bool          `json:"async,omitempty"`
	Stale    bool          `json:"stale,omitempty"`
	Failed   bool          `json:"failed,omitempty"`
}

// GraphEvent reports a structural change: a node added or removed, or a
// connection made or broken.
type GraphEvent struct {
	EventBase
	NodeID     string      `json:"node_id,omitempty"`
	NodeType   string      `json:"node_type,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Hooks run on
// the engine goroutine, in propagation order, and must not call back into
// the engine synchronously.
type LifecycleHooks struct {
	OnOutputChanged func(context.Context, *OutputEvent)
	OnNodeError     func(context.Context, *ErrorEvent)
	OnStateChange   func(context.Context, *StateEvent)
	OnCompute       func(context.Context, *ComputeEvent)
	OnGraphChange   func(context.Context, *GraphEvent)
}

// ComposeHooks fans each callback out to every non-nil hook in order.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		out.OnOutputChanged = chain(out.OnOutputChanged, h.OnOutputChanged)
		out.OnNodeError = chain(out.OnNodeError, h.OnNodeError)
		out.OnStateChange = chain(out.OnStateChange, h.OnStateChange)
		out.OnCompute = chain(out.OnCompute, h.OnCompute)
		out.OnGraphChange = chain(out.OnGraphChange, h.OnGraphChange)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
