// Package events publishes domain events after the owning transaction has
// committed. Delivery is best effort: callers log publish failures and never
// undo committed state because of them.
package events

import (
	"context"
	"time"
)

// Event types, also used as NATS subjects and Kafka topics.
const (
	OrderCreated   = "order.created"
	OrderCancelled = "order.cancelled"
	OrderFinalized = "order.finalized"
	CartConverted  = "cart.converted"
)

// Publisher sends an event. key groups related events (an order id) so
// brokers that partition by key keep them ordered.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

// Envelope is the wire format of every event.
type Envelope struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// OrderLine is a line item as carried in order events.
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderEvent is the payload of the order.* events.
type OrderEvent struct {
	OrderID   int64       `json:"order_id"`
	Reference string      `json:"reference"`
	UserID    int64       `json:"user_id"`
	Status    string      `json:"status"`
	Total     string      `json:"total"`
	Items     []OrderLine `json:"items,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// CartConvertedEvent is the payload of cart.converted.
type CartConvertedEvent struct {
	CartID  int64 `json:"cart_id"`
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}

func newEnvelope(eventType, key string, payload any) Envelope {
	return Envelope{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }
