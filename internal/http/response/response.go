package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the error body for every route: a human readable detail
// plus a stable machine code.
type ErrorEnvelope struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	RespondDetail(c, status, code, msg)
}

func RespondDetail(c *gin.Context, status int, code string, detail string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Detail: detail,
		Code:   code,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
