package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/users-service/internal/container"
	"github.com/oksasatya/users-service/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register exposes expvar at /api/debug/vars, rate-limited per IP.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	if rdb := container.GetRedis(); rdb != nil {
		rl := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), container.GetLogger())
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
		return
	}
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}
