package checkout

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/model"
	"github.com/shopzone/storefront/internal/store"
)

type fakeBackend struct {
	mux          *http.ServeMux
	orderReq     api.CreateOrderRequest
	failOrder    bool
	failIntent   bool
	intentCalled bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux()}
	b.mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		if b.failOrder {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Insufficient stock"})
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&b.orderReq))
		json.NewEncoder(w).Encode(model.Order{
			ID:         "o1",
			Status:     model.OrderStatusPending,
			TotalPrice: decimal.NewFromInt(50),
		})
	})
	b.mux.HandleFunc("POST /payments/stripe/create-intent", func(w http.ResponseWriter, r *http.Request) {
		b.intentCalled = true
		if b.failIntent {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"message": "Stripe unavailable"})
			return
		}
		json.NewEncoder(w).Encode(api.PaymentIntent{ID: "pi_1", ClientSecret: "cs_1"})
	})

	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return b, client
}

func loadedCart(t *testing.T) *cart.Cart {
	t.Helper()
	carts := cart.NewManager(store.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c := carts.Load(context.Background(), "p1")
	_, err := c.AddItem(context.Background(), model.ProductSnapshot{
		ID: "prod-a", Name: "A", Price: decimal.NewFromInt(10), Stock: 5,
	}, 2)
	require.NoError(t, err)
	_, err = c.AddItem(context.Background(), model.ProductSnapshot{
		ID: "prod-b", Name: "B", Price: decimal.NewFromInt(15), Stock: 5,
	}, 2)
	require.NoError(t, err)
	return c
}

func testService() *Service {
	return NewService(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testUser() *model.User {
	return &model.User{ID: "u1", Name: "Alice", Role: model.RoleUser}
}

func TestService_Place_Cash(t *testing.T) {
	backend, client := newFakeBackend(t)
	c := loadedCart(t)

	order, err := testService().Place(context.Background(), client, c, testUser(), model.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)

	// Cart contents were submitted as product references with quantities.
	require.Len(t, backend.orderReq.Products, 2)
	assert.Equal(t, api.CreateOrderLine{Product: "prod-a", Quantity: 2}, backend.orderReq.Products[0])

	// Cash checkout never touches the payments endpoint, and the cart is
	// cleared on success.
	assert.False(t, backend.intentCalled)
	assert.True(t, c.IsEmpty())
}

func TestService_Place_CardRequestsIntent(t *testing.T) {
	backend, client := newFakeBackend(t)
	c := loadedCart(t)

	_, err := testService().Place(context.Background(), client, c, testUser(), model.PaymentMethodCard)
	require.NoError(t, err)
	assert.True(t, backend.intentCalled)
	assert.True(t, c.IsEmpty())
}

func TestService_Place_IntentFailureKeepsOrder(t *testing.T) {
	backend, client := newFakeBackend(t)
	backend.failIntent = true
	c := loadedCart(t)

	// A failed payment-intent request leaves the order pending; checkout
	// still succeeds and the cart is cleared.
	order, err := testService().Place(context.Background(), client, c, testUser(), model.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.True(t, c.IsEmpty())
}

func TestService_Place_OrderFailureKeepsCart(t *testing.T) {
	backend, client := newFakeBackend(t)
	backend.failOrder = true
	c := loadedCart(t)

	_, err := testService().Place(context.Background(), client, c, testUser(), model.PaymentMethodCash)
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock", api.Message(err, "fallback"))

	// The cart is untouched so the shopper can retry.
	assert.Equal(t, 4, c.ItemCount())
	assert.False(t, backend.intentCalled)
}

func TestService_Place_EmptyCart(t *testing.T) {
	_, client := newFakeBackend(t)
	carts := cart.NewManager(store.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c := carts.Load(context.Background(), "p1")

	_, err := testService().Place(context.Background(), client, c, testUser(), model.PaymentMethodCash)
	assert.ErrorIs(t, err, ErrEmptyCart)
}
