package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// UserModule mounts signup, login and account routes under /users.
type UserModule struct {
	Handler *handlers.UserHandler
	Guards  Guards
}

func NewUserModule(h *handlers.UserHandler, g Guards) *UserModule {
	return &UserModule{Handler: h, Guards: g}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	// Public, limited per IP and route
	byPath := middleware.KeyByIPAndPath()
	users.POST("/register", m.Guards.Limit(10, time.Minute, byPath), m.Handler.Register)
	users.POST("/register/resend-code", m.Guards.Limit(5, time.Minute, byPath), m.Handler.ResendCode)
	users.POST("/verify-email", m.Guards.Limit(30, time.Minute, byPath), m.Handler.VerifyEmail)
	users.POST("/login", m.Guards.Limit(10, time.Minute, byPath), m.Handler.Login)
	users.POST("/refresh-token", m.Guards.Limit(60, time.Minute, byPath), m.Handler.RefreshToken)
	users.POST("/forgot-password", m.Guards.Limit(5, time.Minute, byPath), m.Handler.ForgotPassword)
	users.POST("/reset-password", m.Guards.Limit(30, time.Minute, byPath), m.Handler.ResetPassword)

	auth := users.Group("/")
	auth.Use(m.Guards.Auth, m.Guards.Limit(120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/change-password", m.Handler.ChangePassword)
		auth.GET("/current-user", m.Handler.CurrentUser)
		auth.PUT("/update-account", m.Handler.UpdateAccount)

		auth.GET("/wishlist", m.Handler.GetWishlist)
		auth.POST("/wishlist/add", m.Handler.AddToWishlist)
		auth.POST("/wishlist/remove", m.Handler.RemoveFromWishlist)
	}
}
