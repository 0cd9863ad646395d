package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopzone/storefront/internal/model"
)

// CreateOrderLine references a product by ID; pricing is resolved server-side.
type CreateOrderLine struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Products []CreateOrderLine `json:"products"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.doJSON(ctx, http.MethodPost, "/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.doJSON(ctx, http.MethodGet, "/orders/myorders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type OrderFilter struct {
	Status model.OrderStatus
	Page   int
	Limit  int
}

func (f OrderFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// PageLink renders the filter as a relative query string for the given page,
// keeping the active status filter.
func (f OrderFilter) PageLink(page int) string {
	f.Page = page
	f.Limit = 0
	return "?" + f.query().Encode()
}

type OrderList struct {
	Orders []model.Order `json:"orders"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
	Total  int           `json:"total"`
}

func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) (*OrderList, error) {
	var resp OrderList
	if err := c.doJSON(ctx, http.MethodGet, "/orders", filter.query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.doJSON(ctx, http.MethodPut, "/orders/"+id+"/status", nil, body, nil)
}

func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/orders/"+id+"/cancel", nil, nil, nil)
}

func (c *Client) PayOrder(ctx context.Context, id, paymentMethod string) error {
	body := map[string]string{"paymentMethod": paymentMethod}
	return c.doJSON(ctx, http.MethodPost, "/orders/"+id+"/pay", nil, body, nil)
}
