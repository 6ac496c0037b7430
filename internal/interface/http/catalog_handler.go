package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/response"
)

const maxImageBytes = 5 << 20

type CatalogHandler struct {
	Svc *application.CatalogService
}

func NewCatalogHandler(svc *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{Svc: svc}
}

// ListProducts GET /catalog/products?category=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.Svc.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products", map[string]any{"count": len(products)})
}

// GetProduct GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.Svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product", nil)
}

// SearchProducts GET /catalog/products/search?q=&limit=
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.Svc.SearchProducts(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, products, "products", map[string]any{"count": len(products)})
}

// ListCategories GET /catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cats, "categories", nil)
}

// ListBanners GET /catalog/banners
func (h *CatalogHandler) ListBanners(c *gin.Context) {
	banners, err := h.Svc.ListBanners(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, banners, "banners", nil)
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCategory POST /admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat, "category created", nil)
}

type createProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
}

// CreateProduct POST /admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.CreateProduct(c.Request.Context(), application.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "product created", nil)
}

type updateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
}

// UpdateProduct PUT /admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), application.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "product updated", nil)
}

// DeleteProduct DELETE /admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "product deleted", nil)
}

// UploadProductImage POST /admin/products/:id/image (multipart field "file")
func (h *CatalogHandler) UploadProductImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.Validation("file is required"))
		return
	}
	if fh.Size > maxImageBytes {
		fail(c, apperr.Validation("file too large"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Svc.UploadProductImage(c.Request.Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "image uploaded", nil)
}

type createBannerRequest struct {
	Title    string `json:"title" binding:"required"`
	Subtitle string `json:"subtitle"`
	Badge    string `json:"badge"`
	CTAText  string `json:"ctaText"`
	CTALink  string `json:"ctaLink"`
	Image    string `json:"image" binding:"required"`
	Order    int    `json:"order"`
	Active   *bool  `json:"active"`
}

// CreateBanner POST /admin/banners
func (h *CatalogHandler) CreateBanner(c *gin.Context) {
	var req createBannerRequest
	if !bind(c, &req) {
		return
	}
	b, err := h.Svc.CreateBanner(c.Request.Context(), application.BannerInput{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Badge:    req.Badge,
		CTAText:  req.CTAText,
		CTALink:  req.CTALink,
		Image:    req.Image,
		Order:    req.Order,
		Active:   req.Active,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b, "banner created", nil)
}

// DeleteBanner DELETE /admin/banners/:id
func (h *CatalogHandler) DeleteBanner(c *gin.Context) {
	if err := h.Svc.DeleteBanner(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "banner deleted", nil)
}
