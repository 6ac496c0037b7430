package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// CatalogModule serves the public storefront reads.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
	Guards  Guards
}

func NewCatalogModule(h *handlers.CatalogHandler, g Guards) *CatalogModule {
	return &CatalogModule{Handler: h, Guards: g}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	catalog.GET("/products", m.Handler.ListProducts)
	catalog.GET("/products/search", m.Guards.Limit(120, time.Minute, middleware.KeyByIP()), m.Handler.SearchProducts)
	catalog.GET("/products/:id", m.Handler.GetProduct)
	catalog.GET("/categories", m.Handler.ListCategories)
	catalog.GET("/banners", m.Handler.ListBanners)
}
