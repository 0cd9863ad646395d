package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/checkout"
	"github.com/shopzone/storefront/internal/config"
	"github.com/shopzone/storefront/internal/model"
	"github.com/shopzone/storefront/internal/session"
	"github.com/shopzone/storefront/internal/store"
)

// fakeBackend is the minimal slice of the backend API the pages touch.
type fakeBackend struct {
	orderStatus    model.OrderStatus
	updatedProduct map[string]string
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		role := model.RoleUser
		if strings.HasPrefix(req.Email, "admin") {
			role = model.RoleAdmin
		}
		json.NewEncoder(w).Encode(api.AuthResponse{
			Token: "tok-" + role, ID: "u1", Name: "Tester", Email: req.Email, Role: role,
		})
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		json.NewEncoder(w).Encode(api.ProductList{
			Products: []model.Product{{
				ID: "p1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5, Category: "gadgets",
			}},
			Page: page, Pages: 3, Total: 30,
		})
	})
	mux.HandleFunc("GET /products/p1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Product{
			ID: "p1", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 5,
		})
	})
	mux.HandleFunc("PUT /products/p1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(4<<20))
		b.updatedProduct = map[string]string{
			"name":     r.FormValue("name"),
			"price":    r.FormValue("price"),
			"stock":    r.FormValue("stock"),
			"category": r.FormValue("category"),
		}
		json.NewEncoder(w).Encode(model.Product{ID: "p1", Name: r.FormValue("name")})
	})
	mux.HandleFunc("GET /orders/myorders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Order{})
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.OrderList{
			Orders: []model.Order{{
				ID: "o1", Status: b.orderStatus, User: model.OrderUser{Name: "Tester"},
				Products: []model.OrderLine{{
					Product: model.Product{ID: "p1", Name: "Widget"}, Quantity: 2, Price: decimal.NewFromInt(10),
				}},
			}},
			Page: 1, Pages: 2, Total: 15,
		})
	})
	mux.HandleFunc("PUT /orders/o1/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status model.OrderStatus `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		b.orderStatus = body.Status
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /users/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.UserStats{TotalUsers: 3})
	})
	return mux
}

// browser replays cookies across requests against the server under test.
type browser struct {
	t       *testing.T
	engine  http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, engine http.Handler) *browser {
	return &browser{t: t, engine: engine, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, form)
}

func (b *browser) login(email string) {
	b.t.Helper()
	w := b.postForm("/login", url.Values{"email": {email}, "password": {"secret"}})
	require.Equal(b.t, http.StatusFound, w.Code)
}

func newTestServer(t *testing.T) (*Server, *fakeBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &fakeBackend{orderStatus: model.OrderStatusPending}
	backendSrv := httptest.NewServer(backend.handler(t))
	t.Cleanup(backendSrv.Close)

	client, err := api.NewClient(backendSrv.URL, 5*time.Second)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	srv := NewServer(
		client,
		session.NewManager(client, st, log),
		cart.NewManager(st, log),
		checkout.NewService(nil, log),
		config.CookieConfig{ProfileName: "sz_profile", MaxAge: time.Hour},
		config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		log,
	)
	return srv, backend
}

func TestGuard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())

	w := b.get("/my-orders")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuard_AdminAreaRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	// Unauthenticated → login page.
	b := newBrowser(t, srv.Engine())
	w := b.get("/admin")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Authenticated non-admin → home.
	b.login("user@example.com")
	w = b.get("/admin")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLoginThenGuardedPage(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())

	b.login("user@example.com")
	w := b.get("/my-orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "My Orders")
}

func TestLogoutDropsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())

	b.login("user@example.com")
	w := b.postForm("/logout", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)

	w = b.get("/my-orders")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestCartAPI_AddClampsToStock(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())
	b.get("/") // pick up a profile cookie

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
		strings.NewReader(`{"product_id":"p1","quantity":99}`))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AppliedQuantity   int `json:"appliedQuantity"`
		RequestedQuantity int `json:"requestedQuantity"`
		Cart              struct {
			ItemCount int    `json:"itemCount"`
			Total     string `json:"total"`
		} `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.AppliedQuantity)
	assert.Equal(t, 99, resp.RequestedQuantity)
	assert.Equal(t, 5, resp.Cart.ItemCount)
	assert.Equal(t, "50.00", resp.Cart.Total)
}

func TestProducts_PaginationKeepsFilters(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())

	w := b.get("/products?keyword=phone&minPrice=10&page=2")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	// The search form round-trips the filter and the page links carry it.
	assert.Contains(t, body, `value="phone"`)
	assert.Contains(t, body, `href="?keyword=phone&amp;minPrice=10&amp;page=1"`)
	assert.Contains(t, body, `href="?keyword=phone&amp;minPrice=10&amp;page=3"`)
}

func TestAdminOrders_PaginationKeepsStatusFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())
	b.login("admin@example.com")

	w := b.get("/admin/orders?status=pending")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="?page=2&amp;status=pending"`)
}

func TestAdmin_EditProduct(t *testing.T) {
	srv, backend := newTestServer(t)
	b := newBrowser(t, srv.Engine())
	b.login("admin@example.com")

	// Each product row carries a pre-filled edit form.
	w := b.get("/admin/products")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `action="/admin/products/p1"`)
	assert.Contains(t, body, `value="Widget"`)
	assert.Contains(t, body, `value="gadgets"`)

	// Submitting it sends the multipart update through to the backend.
	w = b.postForm("/admin/products/p1", url.Values{
		"name":        {"Widget XL"},
		"description": {"Bigger widget"},
		"price":       {"12.50"},
		"stock":       {"7"},
		"category":    {"gadgets"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/products", w.Header().Get("Location"))
	require.NotNil(t, backend.updatedProduct)
	assert.Equal(t, "Widget XL", backend.updatedProduct["name"])
	assert.Equal(t, "12.5", backend.updatedProduct["price"])
	assert.Equal(t, "7", backend.updatedProduct["stock"])
}

func TestAdminOrders_LineItemDetails(t *testing.T) {
	srv, _ := newTestServer(t)
	b := newBrowser(t, srv.Engine())
	b.login("admin@example.com")

	w := b.get("/admin/orders")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Widget")
	assert.Contains(t, body, "× 2")
	assert.Contains(t, body, "$10.00")
}

func TestAdmin_UpdateOrderStatusRefetches(t *testing.T) {
	srv, backend := newTestServer(t)
	b := newBrowser(t, srv.Engine())
	b.login("admin@example.com")

	w := b.postForm("/admin/orders/o1/status", url.Values{"status": {"shipped"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/orders", w.Header().Get("Location"))
	assert.Equal(t, model.OrderStatusShipped, backend.orderStatus)

	// The redirected list re-fetch reflects the new status.
	w = b.get("/admin/orders")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shipped")
}
