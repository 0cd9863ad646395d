package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Backend identifiers are opaque strings; the client never generates or
// interprets them.

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status the backend recognizes, in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type Order struct {
	ID         string          `json:"_id"`
	User       OrderUser       `json:"user"`
	Products   []OrderLine     `json:"products"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     OrderStatus     `json:"status"`
	IsPaid     bool            `json:"isPaid"`
	PaidAt     *time.Time      `json:"paidAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type OrderUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderLine carries the price at time of purchase, which may differ from the
// product's current price.
type OrderLine struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ProductSnapshot is the subset of product fields a cart entry keeps for
// display and stock clamping.
type ProductSnapshot struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl"`
}

func Snapshot(p Product) ProductSnapshot {
	return ProductSnapshot{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock, ImageURL: p.ImageURL}
}

type CartEntry struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity for one entry.
func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)
