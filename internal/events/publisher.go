package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       Channel
	producer string
	now      func() time.Time
}

// NewPublisher opens a channel on conn and declares the events exchange.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return NewChannelPublisher(ch), nil
}

func NewChannelPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch, producer: ProducerName, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, meta EventMeta, payload OrderPlacedPayload) error {
	at := p.now().UTC()
	if payload.Timestamp.IsZero() {
		payload.Timestamp = at
	}
	body, err := json.Marshal(newOrderPlacedEvent(meta, p.producer, payload, at))
	if err != nil {
		return fmt.Errorf("marshal CheckoutOrderPlaced: %w", err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

func (p *Publisher) PublishCheckoutCompleted(ctx context.Context, meta EventMeta, payload CheckoutCompletedPayload) error {
	at := p.now().UTC()
	if payload.Timestamp.IsZero() {
		payload.Timestamp = at
	}
	body, err := json.Marshal(newCheckoutCompletedEvent(meta, p.producer, payload, at))
	if err != nil {
		return fmt.Errorf("marshal CheckoutCompleted: %w", err)
	}
	return p.publishJSON(ctx, CheckoutCompletedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// NopPublisher drops every event. Used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, EventMeta, OrderPlacedPayload) error {
	return nil
}

func (NopPublisher) PublishCheckoutCompleted(context.Context, EventMeta, CheckoutCompletedPayload) error {
	return nil
}
