package repository

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs returns the products that still exist, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	List(ctx context.Context, categoryID string) ([]entity.Product, error)
	Search(ctx context.Context, q string, limit int) ([]entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
}

type BannerRepository interface {
	Create(ctx context.Context, b *entity.Banner) error
	// ListActive orders by Order ascending, newest first on ties.
	ListActive(ctx context.Context) ([]entity.Banner, error)
	Delete(ctx context.Context, id string) error
}

type WishlistRepository interface {
	// Add is a no-op when the product is already saved.
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]entity.WishlistItem, error)
}

// ProductIndex is the full-text search side of the catalog.
type ProductIndex interface {
	Index(ctx context.Context, p *entity.Product) error
	Remove(ctx context.Context, id string) error
	// Search returns matching product ids, best match first.
	Search(ctx context.Context, q string, limit int) ([]string, error)
}
