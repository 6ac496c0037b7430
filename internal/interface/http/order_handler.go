package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type OrderHandler struct {
	Svc *application.OrderService
}

func NewOrderHandler(svc *application.OrderService) *OrderHandler {
	return &OrderHandler{Svc: svc}
}

type orderItemRequest struct {
	ProductID string   `json:"productId" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Price     *float64 `json:"price" binding:"required,gte=0"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Image     string   `json:"image"`
}

type addressRequest struct {
	FullAddress string `json:"fullAddress" binding:"required"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state" binding:"required"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
}

// Pointers so that a zero is accepted but a missing field is not.
type pricingRequest struct {
	ItemsTotal      *float64 `json:"itemsTotal" binding:"required"`
	Tax             *float64 `json:"tax" binding:"required"`
	ShippingCharges *float64 `json:"shippingCharges" binding:"required"`
	Discount        *float64 `json:"discount" binding:"required"`
	TotalAmount     *float64 `json:"totalAmount" binding:"required"`
}

type createOrderRequest struct {
	Items   []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	Address addressRequest     `json:"address"`
	Pricing pricingRequest     `json:"pricing"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r createOrderRequest) toInput() application.CreateOrderInput {
	items := make([]entity.OrderItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = entity.OrderItem{ProductID: it.ProductID, Name: it.Name, Price: *it.Price, Quantity: it.Quantity, Image: it.Image}
	}
	return application.CreateOrderInput{
		Items: items,
		Address: entity.Address{
			FullAddress: r.Address.FullAddress,
			City:        r.Address.City,
			State:       r.Address.State,
			PostalCode:  r.Address.PostalCode,
			Country:     r.Address.Country,
			Phone:       r.Address.Phone,
		},
		Pricing: entity.Pricing{
			ItemsTotal:      *r.Pricing.ItemsTotal,
			Tax:             *r.Pricing.Tax,
			ShippingCharges: *r.Pricing.ShippingCharges,
			Discount:        *r.Pricing.Discount,
			TotalAmount:     *r.Pricing.TotalAmount,
		},
	}
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.Svc.CreateOrder(c.Request.Context(), c.GetString(middleware.CtxUserID), req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, o, "order created", nil)
}

// ListMine GET /orders/user
func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.Svc.GetOrdersByUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", map[string]any{"count": len(orders)})
}

// Get GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.Svc.GetOrderByID(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, o, "order", nil)
}

// ListAll GET /orders and GET /admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.Svc.GetAllOrders(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", map[string]any{"count": len(orders)})
}

// UpdateStatus PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), entity.OrderStatus(req.Status), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, o, "order status updated", nil)
}

// Delete DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteOrder(c.Request.Context(), c.Param("id"), principal(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "order deleted", nil)
}
