package entity

import (
	"math"
	"time"
)

// Cart is the per-user basket. Items hold at most one line per product and
// every line has Quantity >= 1.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartLine `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine references a product by id; Product is nil when the product no
// longer exists.
type CartLine struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product"`
}

// TotalAmount sums price * quantity over the lines. A line without a product,
// or with a non-finite price or non-positive quantity, contributes 0.
func (c *Cart) TotalAmount() float64 {
	if c == nil {
		return 0
	}
	var total float64
	for _, l := range c.Items {
		if l.Product == nil || l.Quantity <= 0 {
			continue
		}
		p := l.Product.Price
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		total += p * float64(l.Quantity)
	}
	return math.Round(total*100) / 100
}

// Line returns the line for productID, if present.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if c == nil {
		return CartLine{}, false
	}
	for _, l := range c.Items {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}
