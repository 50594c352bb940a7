package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "worklet-invoker"})
}

const indexHTML = `<!doctype html>
<html>
  <body>
    Welcome to the worklet invoker,
    go to <a href="/graphql">/graphql</a> for the API doc
  </body>
</html>
`

// GET /
func (h *HealthHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}
