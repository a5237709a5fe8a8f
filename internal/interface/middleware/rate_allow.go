package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and private addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowPaths bypasses the limiter for exact route paths such as /healthz.
func AllowPaths(paths ...string) AllowFunc {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c *gin.Context) bool {
		_, ok := set[normalizePath(c)]
		return ok
	}
}

// AnyAllow combines allow funcs; nil entries are ignored.
func AnyAllow(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}
