package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worklet-invoker/internal/http/response"
	"github.com/yungbote/worklet-invoker/internal/services"
	"github.com/yungbote/worklet-invoker/internal/worklet"
)

type InvokeHandler struct {
	invoke services.InvokeService
}

func NewInvokeHandler(invoke services.InvokeService) *InvokeHandler {
	return &InvokeHandler{invoke: invoke}
}

// POST /invoke
func (h *InvokeHandler) Invoke(c *gin.Context) {
	var req worklet.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.invoke.Invoke(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
