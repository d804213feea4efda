package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, OrderCreated, "1", OrderEvent{OrderID: 1}))
	require.NoError(t, r.Publish(ctx, CartConverted, "1", CartConvertedEvent{CartID: 2, OrderID: 1}))

	assert.Equal(t, []string{OrderCreated, CartConverted}, r.Types())

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Key)
	assert.False(t, got[0].OccurredAt.IsZero())

	boom := errors.New("broker down")
	r.FailWith(boom)
	assert.ErrorIs(t, r.Publish(ctx, OrderCancelled, "1", nil), boom)
	assert.Len(t, r.Events(), 2)
}

func TestEnvelopeJSON(t *testing.T) {
	env := newEnvelope(OrderCancelled, "7", OrderEvent{OrderID: 7, Reference: "PED-ABCDEF12", Reason: "customer request"})

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "order.cancelled", decoded["type"])

	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "PED-ABCDEF12", payload["reference"])
	assert.Equal(t, "customer request", payload["reason"])
	assert.NotContains(t, payload, "items")
}

func TestMessageCarrier(t *testing.T) {
	msg := &kafka.Message{}
	c := newMessageCarrier(msg)

	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "k=v")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestNATSSubject(t *testing.T) {
	assert.Equal(t, "order.created", (&NATSPublisher{}).subject(OrderCreated))
	assert.Equal(t, "shop.order.created", (&NATSPublisher{prefix: "shop"}).subject(OrderCreated))
}
