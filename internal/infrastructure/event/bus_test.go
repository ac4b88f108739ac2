package event

import (
	"context"
	"errors"
	"testing"

	"github.com/billing/backend/internal/domain/client"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newClientEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	c, err := client.NewClient("Acme", "", "", "")
	require.NoError(t, err)
	return client.NewClientRegisteredEvent(c)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to matching handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := &recordingHandler{types: []string{client.EventTypeClientRegistered}}
		bus.Subscribe(handler)

		event := newClientEvent(t)
		require.NoError(t, bus.Publish(context.Background(), event))

		require.Len(t, handler.received, 1)
		assert.Equal(t, event.EventID(), handler.received[0].EventID())
	})

	t.Run("non-matching handler receives nothing", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := &recordingHandler{types: []string{client.EventTypeClientRenamed}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newClientEvent(t)))
		assert.Empty(t, handler.received)
	})

	t.Run("wildcard handler receives all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newClientEvent(t), newClientEvent(t)))
		assert.Len(t, handler.received, 2)
	})

	t.Run("handler error does not stop other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		failing := &recordingHandler{types: []string{client.EventTypeClientRegistered}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{client.EventTypeClientRegistered}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newClientEvent(t)))
		assert.Len(t, healthy.received, 1)
	})

	t.Run("unsubscribed handler receives nothing", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := &recordingHandler{types: []string{client.EventTypeClientRegistered}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newClientEvent(t)))
		assert.Empty(t, handler.received)
	})
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}
