package broadcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/domain"
)

func outputEvent(id string, v float64) *domain.OutputEvent {
	return &domain.OutputEvent{EventBase: domain.NewBase(domain.EventOutputChanged), NodeID: id, Value: domain.Number(v)}
}

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(4, nil)
	defer cancel()

	h.Publish(outputEvent("a", 1))
	got := <-ch
	assert.Equal(t, domain.EventOutputChanged, got.Kind())
	assert.Equal(t, "a", got.(*domain.OutputEvent).NodeID)
}

func TestHub_DropsWhenFull(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(1, nil)
	defer cancel()

	h.Publish(outputEvent("a", 1))
	h.Publish(outputEvent("a", 2))
	assert.Equal(t, uint64(1), h.Dropped())
}

func TestHub_Filter(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(4, NodeFilter("b"))
	defer cancel()

	h.Publish(outputEvent("a", 1))
	h.Publish(outputEvent("b", 2))
	h.Publish(&domain.GraphEvent{
		EventBase:  domain.NewBase(domain.EventConnected),
		Connection: &domain.Connection{Source: "a", Target: "b", Port: "x"},
	})

	require.Len(t, ch, 2)
	assert.Equal(t, "b", (<-ch).(*domain.OutputEvent).NodeID)
	assert.Equal(t, domain.EventConnected, (<-ch).Kind())
}

func TestHub_CancelAndClose(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe(1, nil)
	ch2, _ := h.Subscribe(1, nil)
	assert.Equal(t, 2, h.Len())

	cancel1()
	cancel1()
	_, open := <-ch1
	assert.False(t, open)

	h.Close()
	_, open = <-ch2
	assert.False(t, open)

	ch3, _ := h.Subscribe(1, nil)
	_, open = <-ch3
	assert.False(t, open, "subscribing after close yields a closed channel")
	h.Publish(outputEvent("a", 1))
}

func TestHub_Hooks(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(8, nil)
	defer cancel()

	hooks := h.Hooks()
	hooks.OnNodeError(context.Background(), &domain.ErrorEvent{EventBase: domain.NewBase(domain.EventNodeError), NodeID: "x"})
	hooks.OnCompute(context.Background(), &domain.ComputeEvent{EventBase: domain.NewBase(domain.EventComputed), NodeID: "x"})

	assert.Equal(t, domain.EventNodeError, (<-ch).Kind())
	assert.Equal(t, domain.EventComputed, (<-ch).Kind())
}
