package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/users-service/internal/interface/middleware"
)

// OperationalPaths are mounted at the root and never rate limited.
var OperationalPaths = []string{"/healthz", "/metrics"}

// EngineLimitAllow lets private callers and the operational endpoints skip
// the engine-wide limiter.
func EngineLimitAllow() middleware.AllowFunc {
	return middleware.AnyAllow(middleware.AllowPrivateIP(), middleware.AllowPaths(OperationalPaths...))
}

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the operational endpoints at the root and every module
// under /api.
func (r *Registry) RegisterAll() {
	r.Engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
