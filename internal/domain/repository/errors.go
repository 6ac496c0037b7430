package repository

import "github.com/oksasatya/go-storefront/pkg/apperr"

// Errors returned by every implementation of the ports in this package.
var (
	ErrNotFound  = apperr.NotFound("record not found")
	ErrDuplicate = apperr.Conflict("duplicate record")
)
