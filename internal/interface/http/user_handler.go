package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
)

type UserHandler struct {
	Verify   *application.VerificationService
	Auth     *application.AuthService
	Wishlist *application.WishlistService
	Logger   *logrus.Logger
	Cookies  *helpers.CookieManager
}

func NewUserHandler(verify *application.VerificationService, auth *application.AuthService, wishlist *application.WishlistService, logger *logrus.Logger, cookies *helpers.CookieManager) *UserHandler {
	return &UserHandler{Verify: verify, Auth: auth, Wishlist: wishlist, Logger: logger, Cookies: cookies}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required_without=Email"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type updateAccountRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=32"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type productRefRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type loginResponse struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func tokenMeta(pair application.TokenPair) map[string]any {
	return map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry}
}

// Register POST /users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Verify.StartSignup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"email": p.Email, "otpSent": true}, "verification code sent", nil)
}

// VerifyEmail POST /users/verify-email
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Verify.VerifyCode(c.Request.Context(), req.Email, req.Code, application.PurposeSignup)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "email verified", nil)
}

// ResendCode POST /users/register/resend-code
func (h *UserHandler) ResendCode(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Verify.IssueCode(c.Request.Context(), req.Email, application.PurposeSignup); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"email": helpers.NormalizeEmail(req.Email), "otpSent": true}, "verification code sent", nil)
}

// Login POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	u, pair, err := h.Auth.Login(c.Request.Context(), application.LoginInput{
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
	response.Success(c, http.StatusOK, loginResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "login successful", tokenMeta(pair))
}

// RefreshToken POST /users/refresh-token, token from the body or the cookie
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(helpers.RefreshCookie)
	}
	u, pair, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.Cookies.Clear(c)
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, loginResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "token refreshed", tokenMeta(pair))
}

// Logout POST /users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), c.GetString(middleware.CtxUserID)); err != nil {
		fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"loggedOut": true}, "logged out", nil)
}

// ChangePassword POST /users/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserID), req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

// CurrentUser GET /users/current-user
func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, err := h.Auth.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "current user", nil)
}

// UpdateAccount PATCH /users/update-account
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if !bind(c, &req) {
		return
	}
	u, err := h.Auth.UpdateAccount(c.Request.Context(), c.GetString(middleware.CtxUserID), req.Username, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "account updated", nil)
}

// ForgotPassword POST /users/forgot-password
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Verify.IssueCode(c.Request.Context(), req.Email, application.PurposeReset); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"otpSent": true}, "reset code sent", nil)
}

// ResetPassword POST /users/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Verify.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// GetWishlist GET /users/wishlist
func (h *UserHandler) GetWishlist(c *gin.Context) {
	items, err := h.Wishlist.List(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "wishlist", nil)
}

// AddToWishlist POST /users/wishlist/add
func (h *UserHandler) AddToWishlist(c *gin.Context) {
	var req productRefRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.Wishlist.Add(c.Request.Context(), c.GetString(middleware.CtxUserID), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "added to wishlist", nil)
}

// RemoveFromWishlist POST /users/wishlist/remove
func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	var req productRefRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.Wishlist.Remove(c.Request.Context(), c.GetString(middleware.CtxUserID), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items, "removed from wishlist", nil)
}
