package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

// bind decodes the JSON body into dst and reports a validation error through
// the error middleware when it does not fit.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperr.Validation("invalid payload", validation.ToDetails(err)...))
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func principal(c *gin.Context) application.Principal {
	return application.Principal{
		UserID: c.GetString(middleware.CtxUserID),
		Role:   entity.Role(c.GetString(middleware.CtxUserRole)),
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
