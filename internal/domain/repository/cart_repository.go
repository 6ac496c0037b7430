package repository

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// CartRepository mutates carts with single atomic statements so concurrent
// requests from one user never lose an update.
type CartRepository interface {
	// AddQuantity creates the cart and the line as needed, otherwise adds
	// qty to the existing line.
	AddQuantity(ctx context.Context, userID, productID string, qty int) error
	// DecrementQuantity lowers the line by one and deletes it when it was at 1.
	// A missing line is a no-op.
	DecrementQuantity(ctx context.Context, userID, productID string) error
	RemoveLine(ctx context.Context, userID, productID string) error
	// Get returns the cart with lines in insertion order, ErrNotFound when the
	// user never had one. Line products are not populated.
	Get(ctx context.Context, userID string) (*entity.Cart, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	// GetByID populates the user summary and live product fields.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// ListByUser and ListAll are newest first and populated like GetByID.
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	ListAll(ctx context.Context) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error)
	Delete(ctx context.Context, id string) error
}
