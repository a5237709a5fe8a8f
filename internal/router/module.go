package router

import "github.com/gin-gonic/gin"

// Module registers its routes relative to the group it is given; the
// registry mounts every module under /api.
type Module interface {
	Register(rg *gin.RouterGroup)
}
