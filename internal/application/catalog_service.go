package application

import (
	"context"
	"errors"
	"io"
	"math"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// CatalogService serves the public catalog and its admin maintenance.
// Index and Images are optional; without Index search falls back to the
// database.
type CatalogService struct {
	Products   repo.ProductRepository
	Categories repo.CategoryRepository
	Banners    repo.BannerRepository
	Index      repo.ProductIndex
	Images     ImageStore
	Logger     *logrus.Logger
}

func NewCatalogService(products repo.ProductRepository, categories repo.CategoryRepository, banners repo.BannerRepository, index repo.ProductIndex, images ImageStore, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		Products:   products,
		Categories: categories,
		Banners:    banners,
		Index:      index,
		Images:     images,
		Logger:     logger,
	}
}

// ListProducts returns products newest first, optionally filtered by a
// category id or name. An unknown category yields an empty list.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]entity.Product, error) {
	categoryID := ""
	if category = strings.TrimSpace(category); category != "" {
		c, err := s.resolveCategory(ctx, category)
		if errors.Is(err, ErrCategoryNotFound) {
			return []entity.Product{}, nil
		}
		if err != nil {
			return nil, err
		}
		categoryID = c.ID
	}
	return s.Products.List(ctx, categoryID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// SearchProducts ranks with the search index when it is configured and
// reachable, and falls back to a substring match otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, limit int) ([]entity.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("q is required")
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, limit)
		if err == nil {
			return s.productsInOrder(ctx, ids)
		}
		incr(metricIndexingFailures)
		helpers.LogWarn(s.Logger, "product search failed, falling back to database", err, logrus.Fields{"q": q})
	}
	return s.Products.Search(ctx, q, limit)
}

func (s *CatalogService) productsInOrder(ctx context.Context, ids []string) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	byID, err := s.Products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		// the index may lag behind deletes
		if p, ok := byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ProductInput carries a full product for creation. Category is an id or a name.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	Image       string
}

// ProductPatch changes only the non-nil fields.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	Category    *string
	Image       *string
}

func checkProduct(p *entity.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name is required")
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return apperr.Validation("price must be a non-negative number")
	}
	if p.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	p := &entity.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       in.Image,
	}
	if err := checkProduct(p); err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, p, in.Category); err != nil {
		return nil, err
	}
	if err := s.Products.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*entity.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if err := checkProduct(p); err != nil {
		return nil, err
	}
	if patch.Category != nil {
		if err := s.applyCategory(ctx, p, *patch.Category); err != nil {
			return nil, err
		}
	}
	if err := s.Products.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// DeleteProduct removes the product. Cart lines that reference it read back
// without a product from then on.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Products.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, p.ID); err != nil {
			incr(metricIndexingFailures)
			helpers.LogWarn(s.Logger, "product unindex failed", err, logrus.Fields{"product_id": p.ID})
		}
	}
	if s.Images != nil && p.Image != "" {
		if err := s.Images.Delete(ctx, p.Image); err != nil {
			helpers.LogWarn(s.Logger, "product image delete failed", err, logrus.Fields{"product_id": p.ID})
		}
	}
	return nil
}

// UploadProductImage stores the image and points the product at its URL.
func (s *CatalogService) UploadProductImage(ctx context.Context, productID, filename, contentType string, r io.Reader) (*entity.Product, error) {
	if s.Images == nil {
		return nil, ErrImageStoreUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("file must be an image")
	}
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(path.Ext(filename))
	objectPath := path.Join("products", p.ID, uuid.NewString()+ext)
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, apperr.Dependency("image upload failed", err)
	}
	old := p.Image
	p.Image = url
	if err := s.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	if old != "" && old != url {
		if err := s.Images.Delete(ctx, old); err != nil {
			helpers.LogWarn(s.Logger, "old product image delete failed", err, logrus.Fields{"product_id": p.ID})
		}
	}
	s.index(ctx, p)
	return p, nil
}

func (s *CatalogService) index(ctx context.Context, p *entity.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		incr(metricIndexingFailures)
		helpers.LogWarn(s.Logger, "product index failed", err, logrus.Fields{"product_id": p.ID})
	}
}

// applyCategory sets p's category from an id or a name; blank clears it.
func (s *CatalogService) applyCategory(ctx context.Context, p *entity.Product, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		p.CategoryID, p.Category = "", nil
		return nil
	}
	c, err := s.resolveCategory(ctx, ref)
	if err != nil {
		return err
	}
	p.CategoryID, p.Category = c.ID, c
	return nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, ref string) (*entity.Category, error) {
	c, err := s.Categories.GetByID(ctx, ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	c, err = s.Categories.GetByName(ctx, ref)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	return c, err
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	out, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Category{}
	}
	return out, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	c := &entity.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return c, nil
}

// BannerInput falls back to the storefront defaults for blank call-to-action fields.
type BannerInput struct {
	Title    string
	Subtitle string
	Badge    string
	CTAText  string
	CTALink  string
	Image    string
	Order    int
	Active   *bool
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func (s *CatalogService) CreateBanner(ctx context.Context, in BannerInput) (*entity.Banner, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if strings.TrimSpace(in.Image) == "" {
		return nil, apperr.Validation("image is required")
	}
	b := &entity.Banner{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Badge:    orDefault(in.Badge, "Featured"),
		CTAText:  orDefault(in.CTAText, "Shop Now"),
		CTALink:  orDefault(in.CTALink, "/products"),
		Image:    strings.TrimSpace(in.Image),
		Order:    in.Order,
		Active:   in.Active == nil || *in.Active,
	}
	if err := s.Banners.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *CatalogService) ListBanners(ctx context.Context) ([]entity.Banner, error) {
	out, err := s.Banners.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Banner{}
	}
	return out, nil
}

func (s *CatalogService) DeleteBanner(ctx context.Context, id string) error {
	err := s.Banners.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrBannerNotFound
	}
	return err
}
