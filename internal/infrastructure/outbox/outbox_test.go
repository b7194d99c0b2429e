package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutbox "github.com/paylab/orderpay/internal/domain/outbox"
	"github.com/paylab/orderpay/internal/infrastructure/outbox"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	received := make(chan domoutbox.Event, 1)
	bus.Subscribe("order.paid", func(_ context.Context, e domoutbox.Event) error {
		received <- e
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "order.paid"}))

	select {
	case e := <-received:
		assert.Equal(t, "order.paid", e.EventName())
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBusIgnoresUnsubscribedEvents(t *testing.T) {
	bus := outbox.NewBus(nil)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), testEvent{name: "order.created"}))
}

func TestBusPublishNilEvent(t *testing.T) {
	bus := outbox.NewBus(nil)
	require.NoError(t, bus.Publish(context.Background(), nil))
}
