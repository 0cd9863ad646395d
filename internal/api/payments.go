package api

import (
	"context"
	"net/http"
)

// PaymentIntent is the Stripe intent handle the backend creates for an order.
// The client only logs it; card collection is not handled here.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string) (*PaymentIntent, error) {
	body := map[string]string{"orderId": orderID}
	var intent PaymentIntent
	if err := c.doJSON(ctx, http.MethodPost, "/payments/stripe/create-intent", nil, body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) RefundOrder(ctx context.Context, orderID string) error {
	return c.doJSON(ctx, http.MethodPut, "/payments/refund/"+orderID, nil, nil, nil)
}

func (c *Client) ConfirmPayment(ctx context.Context, paymentIntentID string) error {
	body := map[string]string{"paymentIntentId": paymentIntentID}
	return c.doJSON(ctx, http.MethodPost, "/payments/confirm", nil, body, nil)
}
