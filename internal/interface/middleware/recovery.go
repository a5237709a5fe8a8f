package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/pkg/response"
)

// InternalErrorMessage is the only detail a client sees for a 500.
const InternalErrorMessage = "An error occurred processing your request"

// Recovery logs a panic with the request id and answers with the generic
// 500 envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("panic recovered")
		response.Error[any](c, http.StatusInternalServerError, InternalErrorMessage, nil)
	})
}

// AccessLog writes one structured line per request.
func AccessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"ip":         ipFromCtx(c),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request completed")
			return
		}
		entry.Info("request completed")
	}
}
