package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worklet-invoker/internal/platform/apierr"
)

// RespondAPIError maps err through apierr. Anything that is not an
// *apierr.Error becomes a 500 with code "internal_error".
func RespondAPIError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		code := ae.Code
		if code == "" {
			code = "internal_error"
		}
		RespondError(c, apierr.StatusOf(ae), code, ae)
		return
	}
	RespondError(c, apierr.StatusOf(err), "internal_error", err)
}
