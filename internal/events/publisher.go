// Package events publishes storefront activity to RabbitMQ for downstream
// consumers (analytics, fulfilment). Publishing is best-effort: failures are
// logged and never surfaced to the shopper.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const ordersExchange = "storefront.orders"

type OrderPlaced struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ItemCount     int             `json:"item_count"`
	PaymentMethod string          `json:"payment_method"`
	PlacedAt      time.Time       `json:"placed_at"`
}

type Publisher struct {
	channel *amqp.Channel
	log     *slog.Logger
}

// NewPublisher declares the orders exchange and returns a publisher bound to
// it.
func NewPublisher(ch *amqp.Channel, log *slog.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare orders exchange: %w", err)
	}
	return &Publisher{channel: ch, log: log}, nil
}

// OrderPlaced publishes an order-placed event. A nil publisher is a no-op so
// callers don't have to care whether messaging is configured.
func (p *Publisher) OrderPlaced(ctx context.Context, event OrderPlaced) {
	if p == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("encode order event", "order_id", event.OrderID, "error", err)
		return
	}
	err = p.channel.PublishWithContext(ctx, ordersExchange, "order.placed", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		p.log.Error("publish order event", "order_id", event.OrderID, "error", err)
	}
}
