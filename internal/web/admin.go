package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/model"
)

const adminPerPage = 10

func (s *Server) adminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	client := s.authed(c)
	data := gin.H{"Title": "Dashboard"}

	orders, err := client.ListOrders(ctx, api.OrderFilter{Limit: 100})
	if err != nil {
		s.log.Error("dashboard: fetch orders", "error", err)
		data["LoadError"] = true
		s.render(c, http.StatusOK, "admin_dashboard", data)
		return
	}

	revenue := decimal.Zero
	pending := 0
	for _, o := range orders.Orders {
		if o.Status != model.OrderStatusCancelled {
			revenue = revenue.Add(o.TotalPrice)
		}
		if o.Status == model.OrderStatusPending {
			pending++
		}
	}
	recent := orders.Orders
	if len(recent) > 5 {
		recent = recent[:5]
	}
	data["TotalRevenue"] = revenue
	data["TotalOrders"] = orders.Total
	data["PendingOrders"] = pending
	data["RecentOrders"] = recent

	if products, err := client.ListProducts(ctx, api.ProductFilter{Limit: 1}); err != nil {
		s.log.Error("dashboard: fetch products", "error", err)
	} else {
		data["TotalProducts"] = products.Total
	}

	if stats, err := client.GetUserStats(ctx); err != nil {
		s.log.Error("dashboard: fetch user stats", "error", err)
	} else {
		data["TotalUsers"] = stats.TotalUsers
	}

	s.render(c, http.StatusOK, "admin_dashboard", data)
}

// --- Products ---

func (s *Server) adminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	filter := api.ProductFilter{Keyword: c.Query("keyword"), Page: page, Limit: adminPerPage}

	list, err := s.authed(c).ListProducts(c.Request.Context(), filter)
	if err != nil {
		s.log.Error("admin: fetch products", "error", err)
		s.render(c, http.StatusOK, "admin_products", gin.H{"Title": "Products", "Filter": filter, "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "admin_products", gin.H{
		"Title":    "Products",
		"Products": s.productViews(list.Products),
		"Filter":   filter,
		"Page":     list.Page,
		"Pages":    list.Pages,
		"Total":    list.Total,
	})
}

// productFormFromRequest reads the admin product form, including the
// optional image upload which is streamed through to the backend untouched.
func productFormFromRequest(c *gin.Context) (api.ProductForm, error) {
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		return api.ProductForm{}, err
	}
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil || stock < 0 {
		stock = 0
	}
	form := api.ProductForm{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Stock:       stock,
		Category:    c.PostForm("category"),
	}
	if file, err := c.FormFile("image"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return api.ProductForm{}, err
		}
		form.Image = f
		form.ImageName = file.Filename
	}
	return form, nil
}

func closeForm(form api.ProductForm) {
	if closer, ok := form.Image.(io.Closer); ok {
		closer.Close()
	}
}

func (s *Server) adminCreateProduct(c *gin.Context) {
	form, err := productFormFromRequest(c)
	if err != nil {
		s.flashError(c, "Invalid product form.")
		c.Redirect(http.StatusFound, "/admin/products")
		return
	}
	defer closeForm(form)
	if _, err := s.authed(c).CreateProduct(c.Request.Context(), form); err != nil {
		s.log.Error("admin: create product", "error", err)
		s.flashError(c, api.Message(err, "Failed to create product"))
	} else {
		s.flashSuccess(c, "Product created.")
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

func (s *Server) adminUpdateProduct(c *gin.Context) {
	form, err := productFormFromRequest(c)
	if err != nil {
		s.flashError(c, "Invalid product form.")
		c.Redirect(http.StatusFound, "/admin/products")
		return
	}
	defer closeForm(form)
	id := c.Param("id")
	if _, err := s.authed(c).UpdateProduct(c.Request.Context(), id, form); err != nil {
		s.log.Error("admin: update product", "product_id", id, "error", err)
		s.flashError(c, api.Message(err, "Failed to update product"))
	} else {
		s.flashSuccess(c, "Product updated.")
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

func (s *Server) adminDeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := s.authed(c).DeleteProduct(c.Request.Context(), id); err != nil {
		s.log.Error("admin: delete product", "product_id", id, "error", err)
		s.flashError(c, api.Message(err, "Failed to delete product"))
	} else {
		s.flashSuccess(c, "Product deleted.")
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

// --- Orders ---

func (s *Server) adminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	filter := api.OrderFilter{
		Status: model.OrderStatus(c.Query("status")),
		Page:   page,
		Limit:  adminPerPage,
	}

	list, err := s.authed(c).ListOrders(c.Request.Context(), filter)
	if err != nil {
		s.log.Error("admin: fetch orders", "error", err)
		s.render(c, http.StatusOK, "admin_orders", gin.H{"Title": "Orders", "Filter": filter, "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "admin_orders", gin.H{
		"Title":    "Orders",
		"Orders":   list.Orders,
		"Filter":   filter,
		"Page":     list.Page,
		"Pages":    list.Pages,
		"Total":    list.Total,
		"Statuses": model.OrderStatuses,
	})
}

func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	status := model.OrderStatus(c.PostForm("status"))
	if err := s.authed(c).UpdateOrderStatus(c.Request.Context(), id, status); err != nil {
		s.log.Error("admin: update order status", "order_id", id, "status", status, "error", err)
		s.flashError(c, api.Message(err, "Failed to update order status"))
	} else {
		s.flashSuccess(c, "Order status updated.")
	}
	c.Redirect(http.StatusFound, "/admin/orders")
}

// --- Users ---

func (s *Server) adminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	filter := api.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
		Limit:  adminPerPage,
	}

	list, err := s.authed(c).ListUsers(c.Request.Context(), filter)
	if err != nil {
		s.log.Error("admin: fetch users", "error", err)
		s.render(c, http.StatusOK, "admin_users", gin.H{"Title": "Users", "Filter": filter, "LoadError": true})
		return
	}
	s.render(c, http.StatusOK, "admin_users", gin.H{
		"Title":  "Users",
		"Users":  list.Users,
		"Filter": filter,
		"Page":   list.Page,
		"Pages":  list.Pages,
		"Total":  list.Total,
		"Roles":  []string{model.RoleUser, model.RoleManager, model.RoleAdmin},
	})
}

func (s *Server) adminUpdateUserRole(c *gin.Context) {
	id := c.Param("id")
	role := c.PostForm("role")
	if err := s.authed(c).UpdateUserRole(c.Request.Context(), id, role); err != nil {
		s.log.Error("admin: update user role", "user_id", id, "role", role, "error", err)
		s.flashError(c, api.Message(err, "Failed to update user role"))
	} else {
		s.flashSuccess(c, "User role updated.")
	}
	c.Redirect(http.StatusFound, "/admin/users")
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := s.authed(c).DeleteUser(c.Request.Context(), id); err != nil {
		s.log.Error("admin: delete user", "user_id", id, "error", err)
		s.flashError(c, api.Message(err, "Failed to delete user"))
	} else {
		s.flashSuccess(c, "User deleted.")
	}
	c.Redirect(http.StatusFound, "/admin/users")
}
