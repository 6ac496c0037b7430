package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

type ProductRepository struct{ s *Store }

// withCategory returns a copy of p with its category populated. Callers hold mu.
func (s *Store) withCategory(p *entity.Product) *entity.Product {
	cp := *p
	cp.Category = nil
	if c, ok := s.categories[p.CategoryID]; ok {
		cc := *c
		cp.Category = &cc
	}
	return &cp
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.CategoryID != "" {
		if _, ok := r.s.categories[p.CategoryID]; !ok {
			return repository.ErrNotFound
		}
	}
	p.ID = newID()
	p.CreatedAt = r.s.stamp()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.withCategory(p), nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = r.s.withCategory(p)
		}
	}
	return out, nil
}

func (r *ProductRepository) filter(match func(*entity.Product) bool) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range r.s.products {
		if match(p) {
			out = append(out, *r.s.withCategory(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ProductRepository) List(_ context.Context, categoryID string) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(p *entity.Product) bool { return categoryID == "" || p.CategoryID == categoryID }), nil
}

func (r *ProductRepository) Search(_ context.Context, q string, limit int) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q = strings.ToLower(q)
	out := r.filter(func(p *entity.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.CategoryID != "" {
		if _, ok := r.s.categories[p.CategoryID]; !ok {
			return repository.ErrNotFound
		}
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.Now()
	cp := *p
	cp.Category = nil
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	// wishlist rows cascade; cart lines keep the dangling reference
	for uid, items := range r.s.wishlist {
		kept := items[:0]
		for _, it := range items {
			if it.ProductID != id {
				kept = append(kept, it)
			}
		}
		r.s.wishlist[uid] = kept
	}
	return nil
}

type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = newID()
	c.CreatedAt = r.s.stamp()
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepository) GetByName(_ context.Context, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CategoryRepository) List(_ context.Context) ([]entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type BannerRepository struct{ s *Store }

func (r *BannerRepository) Create(_ context.Context, b *entity.Banner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = newID()
	b.CreatedAt = r.s.stamp()
	cp := *b
	r.s.banners[b.ID] = &cp
	return nil
}

func (r *BannerRepository) ListActive(_ context.Context) ([]entity.Banner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Banner, 0)
	for _, b := range r.s.banners {
		if b.Active {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BannerRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.banners[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.banners, id)
	return nil
}

type WishlistRepository struct{ s *Store }

func (r *WishlistRepository) Add(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[productID]; !ok {
		return repository.ErrNotFound
	}
	for _, it := range r.s.wishlist[userID] {
		if it.ProductID == productID {
			return nil
		}
	}
	r.s.wishlist[userID] = append(r.s.wishlist[userID], entity.WishlistItem{ProductID: productID, AddedAt: r.s.stamp()})
	return nil
}

func (r *WishlistRepository) Remove(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.wishlist[userID]
	kept := make([]entity.WishlistItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	r.s.wishlist[userID] = kept
	return nil
}

func (r *WishlistRepository) List(_ context.Context, userID string) ([]entity.WishlistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.WishlistItem, 0, len(r.s.wishlist[userID]))
	for _, it := range r.s.wishlist[userID] {
		if p, ok := r.s.products[it.ProductID]; ok {
			it.Product = r.s.withCategory(p)
			out = append(out, it)
		}
	}
	return out, nil
}

var (
	_ repository.ProductRepository  = (*ProductRepository)(nil)
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.BannerRepository   = (*BannerRepository)(nil)
	_ repository.WishlistRepository = (*WishlistRepository)(nil)
)
