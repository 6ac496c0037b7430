package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// AdminModule mounts the back office under /admin. Only login is public.
type AdminModule struct {
	Admin   *handlers.AdminHandler
	Catalog *handlers.CatalogHandler
	Orders  *handlers.OrderHandler
	Email   *handlers.EmailHandler
	Guards  Guards
}

func NewAdminModule(admin *handlers.AdminHandler, catalog *handlers.CatalogHandler, orders *handlers.OrderHandler, email *handlers.EmailHandler, g Guards) *AdminModule {
	return &AdminModule{Admin: admin, Catalog: catalog, Orders: orders, Email: email, Guards: g}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.POST("/login", m.Guards.Limit(10, time.Minute, middleware.KeyByIPAndPath()), m.Admin.Login)

	gated := admin.Group("/")
	gated.Use(m.Guards.Auth, m.Guards.Admin)
	{
		gated.POST("/logout", m.Admin.Logout)

		gated.GET("/users", m.Admin.ListUsers)
		gated.GET("/users/:id", m.Admin.GetUser)
		gated.DELETE("/users/:id", m.Admin.DeleteUser)

		gated.POST("/categories", m.Catalog.CreateCategory)
		gated.POST("/products", m.Catalog.CreateProduct)
		gated.PUT("/products/:id", m.Catalog.UpdateProduct)
		gated.DELETE("/products/:id", m.Catalog.DeleteProduct)
		gated.POST("/products/:id/image", m.Catalog.UploadProductImage)
		gated.POST("/banners", m.Catalog.CreateBanner)
		gated.DELETE("/banners/:id", m.Catalog.DeleteBanner)

		gated.GET("/orders", m.Orders.ListAll)

		gated.POST("/emails", m.Guards.Limit(60, time.Minute, middleware.KeyByUserID()), m.Email.Send)
	}
}
