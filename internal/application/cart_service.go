package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
)

// CartView is a cart with its lines populated and the derived total.
type CartView struct {
	entity.Cart
	TotalAmount float64 `json:"totalAmount"`
}

// CartService keeps one cart per user. All lookups are keyed by the caller's
// own id; there is no way to address another user's cart.
type CartService struct {
	Carts    repo.CartRepository
	Products repo.ProductRepository
	Logger   *logrus.Logger
}

func NewCartService(carts repo.CartRepository, products repo.ProductRepository, logger *logrus.Logger) *CartService {
	return &CartService{Carts: carts, Products: products, Logger: logger}
}

// AddItem merges qty into the user's line for productID, creating the cart
// and the line as needed. Only the requested qty is checked against stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*CartView, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperr.Validation("productId is required")
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.Products.GetByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Stock < qty {
		return nil, ErrInsufficientStock.WithDetails(map[string]any{"available": p.Stock, "requested": qty})
	}
	if err := s.Carts.AddQuantity(ctx, userID, p.ID, qty); err != nil {
		return nil, err
	}
	incr(metricCartAdds)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "product_id": p.ID, "qty": qty}).Debug("cart line added")
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem drops the line for productID. A product that is not in the
// cart leaves it unchanged.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("productId is required")
	}
	err := s.Carts.RemoveLine(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) IncreaseItem(ctx context.Context, userID, productID string) (*CartView, error) {
	return s.AddItem(ctx, userID, productID, 1)
}

// DecreaseItem lowers the line by one; a line at 1 is removed.
func (s *CartService) DecreaseItem(ctx context.Context, userID, productID string) (*CartView, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("productId is required")
	}
	if _, err := s.Carts.Get(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if err := s.Carts.DecrementQuantity(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// GetCart returns the cart with each line's product, nil for products that
// no longer exist.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.Carts.Get(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []entity.CartLine{}
	}
	if len(cart.Items) > 0 {
		ids := make([]string, 0, len(cart.Items))
		for _, l := range cart.Items {
			ids = append(ids, l.ProductID)
		}
		products, err := s.Products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range cart.Items {
			cart.Items[i].Product = products[cart.Items[i].ProductID]
		}
	}
	return &CartView{Cart: *cart, TotalAmount: cart.TotalAmount()}, nil
}
