package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// CartHandler always works on the caller's own cart.
type CartHandler struct {
	Svc *application.CartService
}

func NewCartHandler(svc *application.CartService) *CartHandler {
	return &CartHandler{Svc: svc}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Add POST /cart/add
func (h *CartHandler) Add(c *gin.Context) {
	var req addItemRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.Svc.AddItem(c.Request.Context(), c.GetString(middleware.CtxUserID), req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "item added to cart", nil)
}

// Remove POST /cart/remove
func (h *CartHandler) Remove(c *gin.Context) {
	var req productRefRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.Svc.RemoveItem(c.Request.Context(), c.GetString(middleware.CtxUserID), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "item removed from cart", nil)
}

// Increase POST /cart/increase
func (h *CartHandler) Increase(c *gin.Context) {
	var req productRefRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.Svc.IncreaseItem(c.Request.Context(), c.GetString(middleware.CtxUserID), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "quantity increased", nil)
}

// Decrease POST /cart/decrease
func (h *CartHandler) Decrease(c *gin.Context) {
	var req productRefRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.Svc.DecreaseItem(c.Request.Context(), c.GetString(middleware.CtxUserID), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "quantity decreased", nil)
}

// Get GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.Svc.GetCart(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "cart", nil)
}
