package entity

import "time"

// OrderStatus is the case-sensitive order state.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "Created"
	OrderPaid       OrderStatus = "PAID"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
	OrderFailed     OrderStatus = "Failed"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderCreated, OrderPaid, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderFailed,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderItem is the snapshot of a product at order time. Product carries the
// live name and price for display and is nil once the product is gone.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Product   *ProductSummary `json:"product,omitempty"`
}

type ProductSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Address struct {
	FullAddress string `json:"fullAddress"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode,omitempty"`
	Country     string `json:"country,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Pricing is fixed at creation and never recomputed.
type Pricing struct {
	ItemsTotal      float64 `json:"itemsTotal"`
	Tax             float64 `json:"tax"`
	ShippingCharges float64 `json:"shippingCharges"`
	Discount        float64 `json:"discount"`
	TotalAmount     float64 `json:"totalAmount"`
}

type Order struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	User      *UserSummary `json:"user,omitempty"`
	Items     []OrderItem  `json:"items"`
	Address   Address      `json:"address"`
	Pricing   Pricing      `json:"pricing"`
	Status    OrderStatus  `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
