package application

import (
	"context"
	"errors"
	"strings"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
)

type WishlistService struct {
	Wishlist repo.WishlistRepository
	Products repo.ProductRepository
}

func NewWishlistService(wishlist repo.WishlistRepository, products repo.ProductRepository) *WishlistService {
	return &WishlistService{Wishlist: wishlist, Products: products}
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]entity.WishlistItem, error) {
	items, err := s.Wishlist.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.WishlistItem{}
	}
	return items, nil
}

// Add saves productID once; saving it again is a no-op.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) ([]entity.WishlistItem, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("productId is required")
	}
	if _, err := s.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := s.Wishlist.Add(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.List(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) ([]entity.WishlistItem, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("productId is required")
	}
	if err := s.Wishlist.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}
