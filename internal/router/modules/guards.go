package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// Guards are the middleware feature modules put in front of their routes.
type Guards struct {
	Auth   gin.HandlerFunc
	Admin  gin.HandlerFunc
	Redis  redis.Cmdable // nil turns every limiter into a pass-through
	Logger *logrus.Logger
}

// Limit builds a fixed-window limiter. Every client is counted unless an
// allow rule says otherwise.
func (g Guards) Limit(max int, window time.Duration, key middleware.KeyFunc, allow ...middleware.AllowFunc) gin.HandlerFunc {
	var bypass middleware.AllowFunc
	if len(allow) > 0 {
		bypass = func(c *gin.Context) bool {
			for _, fn := range allow {
				if fn(c) {
					return true
				}
			}
			return false
		}
	}
	return middleware.RateLimit(g.Redis, g.Logger, max, window, key, bypass)
}
