// Package checkout runs the one multi-step flow in the storefront: create
// the order from the cart, optionally request a card payment intent, then
// clear the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/events"
	"github.com/shopzone/storefront/internal/model"
)

var ErrEmptyCart = errors.New("cart is empty")

type Service struct {
	publisher *events.Publisher
	log       *slog.Logger
}

// NewService accepts a nil publisher when messaging is not configured.
func NewService(publisher *events.Publisher, log *slog.Logger) *Service {
	return &Service{publisher: publisher, log: log}
}

// Place submits the cart as an order through the token-bound client. On
// success the cart is cleared; on order-creation failure the cart is left
// untouched so the shopper can retry. A failed payment-intent request does
// not roll back the order — it stays pending for a later payment attempt.
func (s *Service) Place(ctx context.Context, client *api.Client, c *cart.Cart, user *model.User, paymentMethod string) (*model.Order, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]api.CreateOrderLine, 0, len(c.Entries()))
	for _, e := range c.Entries() {
		lines = append(lines, api.CreateOrderLine{Product: e.Product.ID, Quantity: e.Quantity})
	}

	order, err := client.CreateOrder(ctx, api.CreateOrderRequest{Products: lines})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	log := s.log.With("order_id", order.ID, "user_id", user.ID)

	if paymentMethod == model.PaymentMethodCard {
		intent, err := client.CreatePaymentIntent(ctx, order.ID)
		if err != nil {
			log.Warn("create payment intent failed, order left pending", "error", err)
		} else {
			log.Info("payment intent created", "intent_id", intent.ID)
		}
	}

	total := c.Total()
	items := c.ItemCount()
	if err := c.Clear(ctx); err != nil {
		log.Error("clear cart after checkout", "error", err)
	}

	s.publisher.OrderPlaced(ctx, events.OrderPlaced{
		OrderID:       order.ID,
		UserID:        user.ID,
		TotalPrice:    total,
		ItemCount:     items,
		PaymentMethod: paymentMethod,
		PlacedAt:      time.Now().UTC(),
	})

	log.Info("order placed", "total", total, "items", items, "payment_method", paymentMethod)
	return order, nil
}
