package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worklet-invoker/internal/http/response"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

// LimitRequestBody caps how much of a request body handlers may read.
func LimitRequestBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// Recover turns a handler panic into a 500 with the usual error body.
func Recover(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("panic recovered",
				"path", c.Request.URL.Path,
				"panic", fmt.Sprint(recovered),
			)
		}
		response.RespondDetail(c, http.StatusInternalServerError, "internal_error", "Internal Server Error")
	})
}
