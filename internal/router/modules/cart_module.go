package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
)

// CartModule: every route acts on the caller's own cart.
type CartModule struct {
	Handler *handlers.CartHandler
	Guards  Guards
}

func NewCartModule(h *handlers.CartHandler, g Guards) *CartModule {
	return &CartModule{Handler: h, Guards: g}
}

func (m *CartModule) Register(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	cart.Use(m.Guards.Auth)
	{
		cart.GET("", m.Handler.Get)
		cart.POST("/add", m.Handler.Add)
		cart.POST("/remove", m.Handler.Remove)
		cart.POST("/increase", m.Handler.Increase)
		cart.POST("/decrease", m.Handler.Decrease)
	}
}
