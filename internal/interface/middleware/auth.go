package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxUserID    = "userID"
	CtxUserRole  = "userRole"
	CtxUserName  = "userName"
	CtxUserEmail = "userEmail"
)

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil {
		return tok
	}
	return ""
}

// Auth validates the access token (Authorization header first, then the
// access_token cookie) and requires the token's session to be the user's
// active one. It sets userID, userRole, userName and userEmail.
func Auth(sessions repository.SessionStore, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		sess, err := sessions.Get(c.Request.Context(), claims.UserID)
		if err != nil || sess.ID != claims.SessionID {
			response.Abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, string(sess.Role))
		c.Set(CtxUserName, sess.Username)
		c.Set(CtxUserEmail, sess.Email)
		c.Next()
	}
}

// RequireAdmin runs after Auth and rejects non-admin principals with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if entity.Role(c.GetString(CtxUserRole)) != entity.RoleAdmin {
			response.Abort(c, http.StatusForbidden, "admin access required", nil)
			return
		}
		c.Next()
	}
}
