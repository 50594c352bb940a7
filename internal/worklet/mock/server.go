package mock

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/worklet"
)

const maxRequestBytes = 1 << 20

// NewHandler serves the worklet invoke contract backed by e, for running the
// mock as a separate process.
func NewHandler(e *Engine, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /invoke", handleInvoke(e, log))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /healtz", handleHealth)
	return accessLog(log)(mux)
}

type wireRequest struct {
	WorkletInput *struct {
		ModelID *string `json:"model_id"`
		Input   []int64 `json:"input"`
	} `json:"worklet_input"`
}

func (w wireRequest) validate() (worklet.Request, error) {
	if w.WorkletInput == nil {
		return worklet.Request{}, errors.New("worklet_input is required")
	}
	if w.WorkletInput.ModelID == nil {
		return worklet.Request{}, errors.New("worklet_input.model_id is required")
	}
	if w.WorkletInput.Input == nil {
		return worklet.Request{}, errors.New("worklet_input.input is required")
	}
	return worklet.Request{WorkletInput: worklet.Input{
		ModelID: *w.WorkletInput.ModelID,
		Input:   w.WorkletInput.Input,
	}}, nil
}

func handleInvoke(e *Engine, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

		var in wireRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		req, err := in.validate()
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		res := e.Invoke(r.Context(), req)
		if res.Failure != nil {
			log.Warn("mock invoke aborted", "error", res.Failure.Error())
			writeDetail(w, http.StatusServiceUnavailable, res.Failure.Error())
			return
		}
		writeJSON(w, http.StatusOK, res.Outcome)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "worklet-mock-server",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"detail": msg})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func accessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
