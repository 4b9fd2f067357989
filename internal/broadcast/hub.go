// Package broadcast fans engine events out to subscribers.
package broadcast

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aretw0/weft/pkg/domain"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

type subscriber struct {
	ch     chan domain.Event
	filter func(domain.Event) bool
}

// Hub delivers published events to every subscriber. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	closed  bool
	dropped atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once. A nil filter
// accepts every event.
func (h *Hub) Subscribe(buffer int, filter func(domain.Event) bool) (<-chan domain.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &subscriber{ch: make(chan domain.Event, buffer), filter: filter}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s.ch, func() {}
	}
	h.subs[s] = struct{}{}

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.ch)
			}
		})
	}
}

// Publish delivers e to every matching subscriber.
func (h *Hub) Publish(e domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.filter != nil && !s.filter(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unregisters every subscriber and closes their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
	}
	h.subs = nil
}

// Hooks returns lifecycle hooks that publish every engine event.
func (h *Hub) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOutputChanged: func(_ context.Context, e *domain.OutputEvent) { h.Publish(e) },
		OnNodeError:     func(_ context.Context, e *domain.ErrorEvent) { h.Publish(e) },
		OnStateChange:   func(_ context.Context, e *domain.StateEvent) { h.Publish(e) },
		OnCompute:       func(_ context.Context, e *domain.ComputeEvent) { h.Publish(e) },
		OnGraphChange:   func(_ context.Context, e *domain.GraphEvent) { h.Publish(e) },
	}
}

// NodeFilter accepts events about the given node ids, plus structural events
// whose connection touches one of them.
func NodeFilter(ids ...string) func(domain.Event) bool {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return func(e domain.Event) bool {
		switch ev := e.(type) {
		case *domain.OutputEvent:
			return want[ev.NodeID]
		case *domain.ErrorEvent:
			return want[ev.NodeID]
		case *domain.StateEvent:
			return want[ev.NodeID]
		case *domain.ComputeEvent:
			return want[ev.NodeID]
		case *domain.GraphEvent:
			if ev.Connection != nil {
				return want[ev.Connection.Source] || want[ev.Connection.Target]
			}
			return want[ev.NodeID]
		}
		return false
	}
}
