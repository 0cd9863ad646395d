// Package cart is the single source of truth for one profile's shopping
// cart: an ordered list of product snapshots with quantities, persisted to
// the profile store after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/shopzone/storefront/internal/model"
	"github.com/shopzone/storefront/internal/store"
)

type Manager struct {
	store store.Store
	log   *slog.Logger
}

func NewManager(st store.Store, log *slog.Logger) *Manager {
	return &Manager{store: st, log: log}
}

// Load restores the profile's cart. A missing or unreadable snapshot yields
// an empty cart rather than an error; the shopper just starts fresh.
func (m *Manager) Load(ctx context.Context, profileID string) *Cart {
	c := &Cart{profileID: profileID, store: m.store}

	data, err := m.store.Get(ctx, profileID, store.KeyCart)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Error("load cart", "profile_id", profileID, "error", err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		m.log.Error("decode cart, starting empty", "profile_id", profileID, "error", err)
		c.entries = nil
	}
	return c
}

// Cart mutators persist the full snapshot after the in-memory transition
// completes; no mutation ever partially persists.
type Cart struct {
	profileID string
	entries   []model.CartEntry
	store     store.Store
}

// Entries returns the cart contents in insertion order.
func (c *Cart) Entries() []model.CartEntry { return c.entries }

func (c *Cart) IsEmpty() bool { return len(c.entries) == 0 }

// ItemCount is the sum of all quantities, recomputed on every call.
func (c *Cart) ItemCount() int {
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

// Total is the sum of price times quantity over all entries, recomputed on
// every call and never cached.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// AddItem merges quantity into an existing entry for the product or appends
// a new one. The resulting quantity is silently clamped to [1, stock]; the
// applied quantity is returned so callers can show a limited-by-stock
// notice. A product with no stock is not added.
func (c *Cart) AddItem(ctx context.Context, p model.ProductSnapshot, quantity int) (applied int, err error) {
	if p.Stock < 1 {
		return 0, nil
	}
	if quantity < 1 {
		quantity = 1
	}

	for i := range c.entries {
		if c.entries[i].Product.ID == p.ID {
			c.entries[i].Product = p
			c.entries[i].Quantity = clamp(c.entries[i].Quantity+quantity, 1, p.Stock)
			applied = c.entries[i].Quantity
			return applied, c.persist(ctx)
		}
	}

	applied = clamp(quantity, 1, p.Stock)
	c.entries = append(c.entries, model.CartEntry{Product: p, Quantity: applied})
	return applied, c.persist(ctx)
}

// UpdateQuantity sets an entry's quantity, clamped to stock. A quantity
// below 1 removes the entry; the cart never holds a zero-quantity entry.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return c.RemoveItem(ctx, productID)
	}
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries[i].Quantity = clamp(quantity, 1, c.entries[i].Product.Stock)
			return c.persist(ctx)
		}
	}
	return nil
}

// RemoveItem deletes the entry if present; removing an absent product is a
// no-op.
func (c *Cart) RemoveItem(ctx context.Context, productID string) error {
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return c.persist(ctx)
		}
	}
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	c.entries = nil
	return c.persist(ctx)
}

func (c *Cart) persist(ctx context.Context) error {
	entries := c.entries
	if entries == nil {
		entries = []model.CartEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.store.Set(ctx, c.profileID, store.KeyCart, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
