package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worklet-invoker/internal/http/response"
	"github.com/yungbote/worklet-invoker/internal/services"
)

type MetricsHandler struct {
	metrics      services.MetricsService
	defaultLimit int
	exposition   http.Handler
}

// NewMetricsHandler serves history and stats from svc and the Prometheus
// exposition from exposition. defaultLimit applies when limit is omitted.
func NewMetricsHandler(svc services.MetricsService, exposition http.Handler, defaultLimit int) *MetricsHandler {
	if defaultLimit <= 0 {
		defaultLimit = services.DefaultHistoryLimit
	}
	return &MetricsHandler{metrics: svc, defaultLimit: defaultLimit, exposition: exposition}
}

// GET /metrics/history?model_id=&limit=&offset=
func (h *MetricsHandler) History(c *gin.Context) {
	params := services.HistoryParams{ModelID: modelIDParam(c)}

	limit := h.defaultLimit
	params.Limit = &limit
	if raw, ok := c.GetQuery("limit"); ok {
		n, set, err := parseNonNegative("limit", raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		if set {
			params.Limit = &n
		} else {
			params.Limit = nil
		}
	}

	if raw, ok := c.GetQuery("offset"); ok {
		n, _, err := parseNonNegative("offset", raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_offset", err)
			return
		}
		params.Offset = n
	}

	response.RespondOK(c, h.metrics.History(c.Request.Context(), params))
}

// GET /metrics/stats?model_id=
func (h *MetricsHandler) Stats(c *gin.Context) {
	modelID := modelIDParam(c)
	stats, err := h.metrics.Stats(c.Request.Context(), modelID)
	if errors.Is(err, services.ErrStatsNotFound) {
		response.RespondDetail(c, http.StatusNotFound, "stats_not_found", "No stats found for model: "+*modelID)
		return
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}

// GET /metrics
func (h *MetricsHandler) Exposition(c *gin.Context) {
	h.exposition.ServeHTTP(c.Writer, c.Request)
}

// modelIDParam returns nil when model_id is absent or blank.
func modelIDParam(c *gin.Context) *string {
	v, ok := c.GetQuery("model_id")
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

// parseNonNegative reports set=false for an empty value.
func parseNonNegative(name, raw string) (n int, set bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %q", name, raw)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%s must be >= 0, got %d", name, n)
	}
	return n, true, nil
}
