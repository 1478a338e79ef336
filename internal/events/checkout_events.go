package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeOrderPlaced       = "CheckoutOrderPlaced"
	EventTypeCheckoutCompleted = "CheckoutCompleted"

	orderPlacedSchema       = "contracts/events/checkout/CheckoutOrderPlaced.v1.payload.schema.json"
	checkoutCompletedSchema = "contracts/events/checkout/CheckoutCompleted.v1.payload.schema.json"
)

type OrderPlacedPayload struct {
	OrderID       string    `json:"orderId"`
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	PaymentMethod string    `json:"paymentMethod"`
	ItemCount     int       `json:"itemCount"`
	TotalPrice    float64   `json:"totalPrice"`
	Timestamp     time.Time `json:"timestamp"`
}

type CheckoutCompletedPayload struct {
	OrderID       string    `json:"orderId"`
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	PaymentMethod string    `json:"paymentMethod"`
	Timestamp     time.Time `json:"timestamp"`
}

type (
	OrderPlacedEvent       = Envelope[OrderPlacedPayload]
	CheckoutCompletedEvent = Envelope[CheckoutCompletedPayload]
)

func newOrderPlacedEvent(meta EventMeta, producer string, payload OrderPlacedPayload, occurredAt time.Time) OrderPlacedEvent {
	return OrderPlacedEvent{
		EventName:     EventTypeOrderPlaced,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producer,
		PartitionKey:  partitionKey(meta, payload.OrderID),
		OccurredAt:    occurredAt,
		Schema:        orderPlacedSchema,
		Payload:       payload,
	}
}

func newCheckoutCompletedEvent(meta EventMeta, producer string, payload CheckoutCompletedPayload, occurredAt time.Time) CheckoutCompletedEvent {
	return CheckoutCompletedEvent{
		EventName:     EventTypeCheckoutCompleted,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producer,
		PartitionKey:  partitionKey(meta, payload.OrderID),
		OccurredAt:    occurredAt,
		Schema:        checkoutCompletedSchema,
		Payload:       payload,
	}
}

func partitionKey(meta EventMeta, orderID string) string {
	if meta.PartitionKey != "" {
		return meta.PartitionKey
	}
	return orderID
}
