package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopzone/storefront/internal/api"
	"github.com/shopzone/storefront/internal/cart"
	"github.com/shopzone/storefront/internal/model"
)

// JSON endpoints mirroring the cart page forms, used for in-page cart
// updates without a full reload.

type cartJSON struct {
	Entries   []model.CartEntry `json:"entries"`
	ItemCount int               `json:"itemCount"`
	Total     string            `json:"total"`
}

func toCartJSON(c *cart.Cart) cartJSON {
	entries := c.Entries()
	if entries == nil {
		entries = []model.CartEntry{}
	}
	return cartJSON{Entries: entries, ItemCount: c.ItemCount(), Total: c.Total().StringFixed(2)}
}

func (s *Server) apiGetCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartJSON(Cart(c)))
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func (s *Server) apiAddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := s.client.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if api.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		s.log.Error("api: fetch product for cart", "product_id", req.ProductID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
		return
	}

	crt := Cart(c)
	applied, err := crt.AddItem(c.Request.Context(), model.Snapshot(*p), req.Quantity)
	if err != nil {
		s.log.Error("api: add cart item", "product_id", req.ProductID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":              toCartJSON(crt),
		"appliedQuantity":   applied,
		"requestedQuantity": req.Quantity,
	})
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (s *Server) apiUpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crt := Cart(c)
	if err := crt.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		s.log.Error("api: update cart item", "product_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toCartJSON(crt))
}

func (s *Server) apiDeleteCartItem(c *gin.Context) {
	crt := Cart(c)
	if err := crt.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		s.log.Error("api: remove cart item", "product_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toCartJSON(crt))
}
