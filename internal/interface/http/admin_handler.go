package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// AdminHandler serves the dashboard's account endpoints.
type AdminHandler struct {
	Auth    *application.AuthService
	Admin   *application.AdminService
	Cookies *helpers.CookieManager
}

func NewAdminHandler(auth *application.AuthService, admin *application.AdminService, cookies *helpers.CookieManager) *AdminHandler {
	return &AdminHandler{Auth: auth, Admin: admin, Cookies: cookies}
}

// Login POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	u, pair, err := h.Auth.AdminLogin(c.Request.Context(), application.LoginInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, loginResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "admin login successful", tokenMeta(pair))
}

// Logout POST /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), c.GetString(middleware.CtxUserID)); err != nil {
		fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"loggedOut": true}, "logged out", nil)
}

// ListUsers GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context(), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users)})
}

// GetUser GET /admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	u, err := h.Admin.GetUser(c.Request.Context(), c.Param("id"), principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// DeleteUser DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.Admin.DeleteUser(c.Request.Context(), c.Param("id"), principal(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}
