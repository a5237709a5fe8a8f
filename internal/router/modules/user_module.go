package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/users-service/internal/container"
	handlers "github.com/oksasatya/users-service/internal/interface/http"
	"github.com/oksasatya/users-service/internal/interface/middleware"
)

// UserModule serves POST /api/users and GET /api/users/:id.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	var createLimiter, readLimiter gin.HandlerFunc
	if rdb := container.GetRedis(); rdb != nil {
		createLimiter = middleware.RateLimit(rdb, cfg.RateLimitCreate, cfg.RateLimitWindow, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP(), container.GetLogger())
		readLimiter = middleware.RateLimit(rdb, cfg.RateLimitRead, cfg.RateLimitWindow, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP(), container.GetLogger())
	} else {
		createLimiter = func(c *gin.Context) { c.Next() }
		readLimiter = createLimiter
	}

	users := rg.Group("/users")
	users.POST("", createLimiter, m.Handler.Create)
	users.GET("/:id", readLimiter, m.Handler.GetByID)
}
