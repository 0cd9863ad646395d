// Package web serves the storefront: server-rendered pages for shoppers and
// admins, plus a small JSON API for cart interactions. All business logic
// lives behind the backend REST API; handlers fetch, render, and redirect.
package web

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/checkout"
	"github.com/shopzone/storefront/internal/config"
	"github.com/shopzone/storefront/internal/session"
)

type Server struct {
	engine   *gin.Engine
	client   *api.Client
	sessions *session.Manager
	carts    *cart.Manager
	checkout *checkout.Service
	cookies  config.CookieConfig
	log      *slog.Logger
}

func NewServer(
	client *api.Client,
	sessions *session.Manager,
	carts *cart.Manager,
	checkoutSvc *checkout.Service,
	cookies config.CookieConfig,
	corsCfg config.CORSConfig,
	log *slog.Logger,
) *Server {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.SetHTMLTemplate(mustTemplates())

	s := &Server{
		engine:   engine,
		client:   client,
		sessions: sessions,
		carts:    carts,
		checkout: checkoutSvc,
		cookies:  cookies,
		log:      log,
	}
	s.registerRoutes(corsCfg)
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes(corsCfg config.CORSConfig) {
	r := s.engine
	r.Use(s.ProfileCookie(), s.LoadState())

	r.GET("/", s.home)
	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/register", s.registerPage)
	r.POST("/register", s.register)
	r.POST("/logout", s.logout)

	r.GET("/products", s.products)
	r.GET("/products/:id", s.productDetail)
	r.POST("/products/:id/add", s.addToCart)

	r.GET("/cart", s.cartPage)
	r.POST("/cart/update", s.updateCartQuantity)
	r.POST("/cart/remove", s.removeCartItem)
	r.POST("/cart/clear", s.clearCart)

	private := r.Group("", s.RequireAuth())
	private.GET("/checkout", s.checkoutPage)
	private.POST("/checkout", s.placeOrder)
	private.GET("/my-orders", s.myOrders)
	private.POST("/my-orders/:id/cancel", s.cancelOrder)
	private.POST("/my-orders/:id/pay", s.payOrder)

	admin := r.Group("/admin", s.RequireAdmin())
	admin.GET("", s.adminDashboard)
	admin.GET("/products", s.adminProducts)
	admin.POST("/products", s.adminCreateProduct)
	admin.POST("/products/:id", s.adminUpdateProduct)
	admin.POST("/products/:id/delete", s.adminDeleteProduct)
	admin.GET("/orders", s.adminOrders)
	admin.POST("/orders/:id/status", s.adminUpdateOrderStatus)
	admin.GET("/users", s.adminUsers)
	admin.POST("/users/:id/role", s.adminUpdateUserRole)
	admin.POST("/users/:id/delete", s.adminDeleteUser)

	jsonAPI := r.Group("/api", cors.New(cors.Config{
		AllowOrigins:     corsCfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	jsonAPI.GET("/cart", s.apiGetCart)
	jsonAPI.POST("/cart/items", s.apiAddCartItem)
	jsonAPI.PUT("/cart/items/:id", s.apiUpdateCartItem)
	jsonAPI.DELETE("/cart/items/:id", s.apiDeleteCartItem)
}

// authed returns the API client bound to the current session's token.
func (s *Server) authed(c *gin.Context) *api.Client {
	return s.client.WithToken(Session(c).Token())
}
