package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
)

type OrderModule struct {
	Handler *handlers.OrderHandler
	Guards  Guards
}

func NewOrderModule(h *handlers.OrderHandler, g Guards) *OrderModule {
	return &OrderModule{Handler: h, Guards: g}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.Use(m.Guards.Auth)
	{
		orders.POST("", m.Handler.Create)
		orders.GET("/user", m.Handler.ListMine)
		orders.GET("/:id", m.Handler.Get)

		// The admin gate runs before body binding so a non-admin always gets 403.
		orders.GET("", m.Guards.Admin, m.Handler.ListAll)
		orders.PATCH("/:id/status", m.Guards.Admin, m.Handler.UpdateStatus)
		orders.DELETE("/:id", m.Guards.Admin, m.Handler.Delete)
	}
}
