package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/checkout"
	"github.com/shopzone/storefront/internal/model"
)

const productsPerPage = 12

type productView struct {
	model.Product
	Image string
}

func (s *Server) productViews(products []model.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, Image: s.client.ImageURL(p.ImageURL)})
	}
	return views
}

func (s *Server) home(c *gin.Context) {
	list, err := s.client.ListProducts(c.Request.Context(), api.ProductFilter{Limit: 8})
	if err != nil {
		s.log.Error("fetch featured products", "error", err)
		s.render(c, http.StatusOK, "home", gin.H{"Title": "Home", "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "home", gin.H{
		"Title":    "Home",
		"Products": s.productViews(list.Products),
	})
}

func (s *Server) products(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	filter := api.ProductFilter{
		Keyword:  c.Query("keyword"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		Page:     page,
		Limit:    productsPerPage,
	}

	list, err := s.client.ListProducts(c.Request.Context(), filter)
	if err != nil {
		s.log.Error("fetch products", "error", err)
		s.render(c, http.StatusOK, "products", gin.H{"Title": "Products", "Filter": filter, "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "products", gin.H{
		"Title":    "Products",
		"Products": s.productViews(list.Products),
		"Filter":   filter,
		"Page":     list.Page,
		"Pages":    list.Pages,
		"Total":    list.Total,
	})
}

func (s *Server) productDetail(c *gin.Context) {
	p, err := s.client.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if api.IsNotFound(err) {
			s.renderNotFound(c, "product")
			return
		}
		s.log.Error("fetch product", "id", c.Param("id"), "error", err)
		s.render(c, http.StatusOK, "product_detail", gin.H{"Title": "Product", "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "product_detail", gin.H{
		"Title":   p.Name,
		"Product": productView{Product: *p, Image: s.client.ImageURL(p.ImageURL)},
	})
}

func (s *Server) addToCart(c *gin.Context) {
	sess := Session(c)
	if !sess.IsAuthenticated() {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	id := c.Param("id")
	quantity, _ := strconv.Atoi(c.PostForm("quantity"))
	if quantity < 1 {
		quantity = 1
	}

	p, err := s.client.GetProduct(c.Request.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			s.renderNotFound(c, "product")
			return
		}
		s.log.Error("fetch product for cart", "id", id, "error", err)
		s.flashError(c, "Could not add item to cart. Please try again.")
		c.Redirect(http.StatusFound, "/products/"+id)
		return
	}

	applied, err := Cart(c).AddItem(c.Request.Context(), model.Snapshot(*p), quantity)
	if err != nil {
		s.log.Error("add cart item", "product_id", id, "error", err)
		s.flashError(c, "Could not add item to cart. Please try again.")
		c.Redirect(http.StatusFound, "/products/"+id)
		return
	}
	if applied < quantity {
		s.flashError(c, "Quantity limited to "+strconv.Itoa(applied)+" by available stock.")
	} else {
		s.flashSuccess(c, "Added to cart.")
	}

	if c.PostForm("buy_now") != "" {
		c.Redirect(http.StatusFound, "/checkout")
		return
	}
	c.Redirect(http.StatusFound, "/cart")
}

func (s *Server) cartPage(c *gin.Context) {
	crt := Cart(c)
	type entryView struct {
		model.CartEntry
		Image string
	}
	entries := make([]entryView, 0, len(crt.Entries()))
	for _, e := range crt.Entries() {
		entries = append(entries, entryView{CartEntry: e, Image: s.client.ImageURL(e.Product.ImageURL)})
	}
	s.render(c, http.StatusOK, "cart", gin.H{
		"Title":   "Shopping Cart",
		"Entries": entries,
		"Total":   crt.Total(),
	})
}

func (s *Server) updateCartQuantity(c *gin.Context) {
	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		c.Redirect(http.StatusFound, "/cart")
		return
	}
	if err := Cart(c).UpdateQuantity(c.Request.Context(), c.PostForm("product_id"), quantity); err != nil {
		s.log.Error("update cart quantity", "error", err)
		s.flashError(c, "Could not update cart.")
	}
	c.Redirect(http.StatusFound, "/cart")
}

func (s *Server) removeCartItem(c *gin.Context) {
	if err := Cart(c).RemoveItem(c.Request.Context(), c.PostForm("product_id")); err != nil {
		s.log.Error("remove cart item", "error", err)
		s.flashError(c, "Could not update cart.")
	}
	c.Redirect(http.StatusFound, "/cart")
}

func (s *Server) clearCart(c *gin.Context) {
	if err := Cart(c).Clear(c.Request.Context()); err != nil {
		s.log.Error("clear cart", "error", err)
		s.flashError(c, "Could not update cart.")
	}
	c.Redirect(http.StatusFound, "/cart")
}

// --- Auth pages ---

func (s *Server) loginPage(c *gin.Context) {
	if Session(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	s.render(c, http.StatusOK, "login", gin.H{"Title": "Login"})
}

func (s *Server) login(c *gin.Context) {
	req := api.LoginRequest{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	res := s.sessions.Login(c.Request.Context(), ProfileID(c), req)
	if !res.OK {
		s.render(c, http.StatusOK, "login", gin.H{"Title": "Login", "Error": res.Message, "Email": req.Email})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) registerPage(c *gin.Context) {
	if Session(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	s.render(c, http.StatusOK, "register", gin.H{"Title": "Register"})
}

func (s *Server) register(c *gin.Context) {
	req := api.RegisterRequest{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	res := s.sessions.Register(c.Request.Context(), ProfileID(c), req)
	if !res.OK {
		s.render(c, http.StatusOK, "register", gin.H{
			"Title": "Register", "Error": res.Message, "Name": req.Name, "Email": req.Email,
		})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) logout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context(), ProfileID(c)); err != nil {
		s.log.Error("logout", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// --- Checkout and orders ---

func (s *Server) checkoutPage(c *gin.Context) {
	crt := Cart(c)
	if crt.IsEmpty() {
		c.Redirect(http.StatusFound, "/cart")
		return
	}
	s.render(c, http.StatusOK, "checkout", gin.H{
		"Title":   "Checkout",
		"Entries": crt.Entries(),
		"Total":   crt.Total(),
	})
}

func (s *Server) placeOrder(c *gin.Context) {
	method := c.PostForm("payment_method")
	if method != model.PaymentMethodCard {
		method = model.PaymentMethodCash
	}

	sess := Session(c)
	_, err := s.checkout.Place(c.Request.Context(), s.authed(c), Cart(c), sess.User(), method)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.Redirect(http.StatusFound, "/cart")
			return
		}
		s.log.Error("checkout failed", "user_id", sess.User().ID, "error", err)
		s.flashError(c, "Failed to place order. Please try again.")
		c.Redirect(http.StatusFound, "/checkout")
		return
	}

	s.flashSuccess(c, "Order placed successfully!")
	c.Redirect(http.StatusFound, "/my-orders")
}

func (s *Server) myOrders(c *gin.Context) {
	orders, err := s.authed(c).MyOrders(c.Request.Context())
	if err != nil {
		s.log.Error("fetch my orders", "error", err)
		s.render(c, http.StatusOK, "my_orders", gin.H{"Title": "My Orders", "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "my_orders", gin.H{"Title": "My Orders", "Orders": orders})
}

func (s *Server) cancelOrder(c *gin.Context) {
	id := c.Param("id")
	if err := s.authed(c).CancelOrder(c.Request.Context(), id); err != nil {
		s.log.Error("cancel order", "order_id", id, "error", err)
		s.flashError(c, api.Message(err, "Failed to cancel order"))
	} else {
		s.flashSuccess(c, "Order cancelled.")
	}
	c.Redirect(http.StatusFound, "/my-orders")
}

func (s *Server) payOrder(c *gin.Context) {
	id := c.Param("id")
	method := c.PostForm("payment_method")
	if method == "" {
		method = model.PaymentMethodCash
	}
	if err := s.authed(c).PayOrder(c.Request.Context(), id, method); err != nil {
		s.log.Error("pay order", "order_id", id, "error", err)
		s.flashError(c, api.Message(err, "Payment failed"))
	} else {
		s.flashSuccess(c, "Payment recorded.")
	}
	c.Redirect(http.StatusFound, "/my-orders")
}
