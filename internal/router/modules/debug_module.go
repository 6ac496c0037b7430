package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// DebugModule exposes expvar counters at /api/debug/vars; mount it on the
// engine root.
type DebugModule struct {
	Guards Guards
}

func NewDebugModule(g Guards) *DebugModule { return &DebugModule{Guards: g} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := m.Guards.Limit(120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/api/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
