package router

import (
	"github.com/oksasatya/go-storefront/internal/container"
	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/internal/router/modules"
)

// guards builds the shared auth gates and limiter settings from the container.
func guards(c *container.Container) modules.Guards {
	g := modules.Guards{
		Auth:   middleware.Auth(c.Repos.Sessions, c.JWT),
		Admin:  middleware.RequireAdmin(),
		Logger: c.Logger,
	}
	if c.Config.RateLimitEnabled && c.Redis != nil {
		g.Redis = c.Redis
	}
	return g
}

// InitModules builds the handlers from the container and adds every feature
// module to the registry. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	g := guards(c)

	userH := handlers.NewUserHandler(c.Verify, c.Auth, c.Wishlist, c.Logger, c.Cookies)
	cartH := handlers.NewCartHandler(c.Carts)
	orderH := handlers.NewOrderHandler(c.Orders)
	catalogH := handlers.NewCatalogHandler(c.Catalog)
	adminH := handlers.NewAdminHandler(c.Auth, c.Admin, c.Cookies)
	emailH := handlers.NewEmailHandler(c.Mailer, c.Logger)

	r.Add(modules.NewUserModule(userH, g))
	r.Add(modules.NewCartModule(cartH, g))
	r.Add(modules.NewOrderModule(orderH, g))
	r.Add(modules.NewCatalogModule(catalogH, g))
	r.Add(modules.NewAdminModule(adminH, catalogH, orderH, emailH, g))

	if c.Config.DebugMetricsEnabled {
		r.AddRoot(modules.NewDebugModule(g))
	}
}
