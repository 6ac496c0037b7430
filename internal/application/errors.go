package application

import "github.com/oksasatya/go-storefront/pkg/apperr"

// Business errors. Compare with errors.Is; the HTTP layer renders them from
// their apperr kind.
var (
	ErrInvalidOrExpiredCode  = apperr.Validation("invalid or expired code")
	ErrPendingSignupNotFound = apperr.NotFound("no pending signup for this email")
	ErrUserExists            = apperr.Conflict("user with email or username already exists")
	ErrUserNotFound          = apperr.NotFound("user does not exist")
	ErrInvalidCredentials    = apperr.Unauthorized("invalid password")
	ErrEmailNotVerified      = apperr.Forbidden("email not verified")
	ErrInvalidRefreshToken   = apperr.Unauthorized("invalid refresh token")
	ErrInvalidOldPassword    = apperr.Validation("invalid old password")
	ErrNotAdmin              = apperr.Unauthorized("admin not found or not an admin")

	ErrUnauthorized = apperr.Unauthorized("unauthorized")
	ErrForbidden    = apperr.Forbidden("forbidden")

	ErrProductNotFound   = apperr.NotFound("product not found")
	ErrCategoryNotFound  = apperr.NotFound("category not found")
	ErrCategoryExists    = apperr.Conflict("category already exists")
	ErrBannerNotFound    = apperr.NotFound("banner not found")
	ErrInvalidQuantity   = apperr.Validation("quantity must be at least 1")
	ErrInsufficientStock = apperr.Validation("insufficient stock")
	ErrCartNotFound      = apperr.NotFound("cart not found")

	ErrOrderNotFound = apperr.NotFound("order not found")
	ErrInvalidStatus = apperr.Validation("invalid status")

	ErrImageStoreUnavailable = apperr.Dependency("image storage is not configured", nil)
)
