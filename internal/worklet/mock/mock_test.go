package mock

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/worklet"
)

func req(modelID string, in ...int64) worklet.Request {
	return worklet.Request{WorkletInput: worklet.Input{ModelID: modelID, Input: in}}
}

func TestScale_TruncatesTowardZero(t *testing.T) {
	require.Equal(t, []int64{2, 4, 6}, Scale([]int64{3, 6, 9}))
	require.Equal(t, []int64{0, 0, 1, -0, -1}, Scale([]int64{0, 1, 2, -1, -2}))
	require.Empty(t, Scale(nil))
	require.Equal(t,
		[]int64{6148914691236517204, -6148914691236517205},
		Scale([]int64{math.MaxInt64, math.MinInt64}),
		"extremes scale without overflow",
	)
}

func TestInvoke_NeverFails(t *testing.T) {
	e := New(Options{FailurePercent: 0, MaxLatencyMs: 50, Seed: 1})
	for i := 0; i < 200; i++ {
		res := e.Invoke(context.Background(), req("m1", 3, 6, 9))
		require.Equal(t, worklet.KindOK, res.Kind())
		require.Equal(t, []int64{2, 4, 6}, res.Outcome.Output)
		require.GreaterOrEqual(t, res.Outcome.LatencyMs, int64(0))
		require.Less(t, res.Outcome.LatencyMs, int64(50))
	}
}

func TestInvoke_AlwaysFails(t *testing.T) {
	e := New(Options{FailurePercent: 100, Seed: 1})
	allowed := map[string]bool{
		"There was a Network error while calling the model": true,
		"Model m1 is not deployed":                          true,
		"Model m1 does not exist":                           true,
	}
	for i := 0; i < 50; i++ {
		res := e.Invoke(context.Background(), req("m1", 1))
		require.Equal(t, worklet.KindDownstream, res.Kind())
		require.True(t, allowed[res.Outcome.ErrorLog], res.Outcome.ErrorLog)
		require.Empty(t, res.Outcome.Output)
	}
}

func TestInvoke_FailureRateIsRoughlyConfigured(t *testing.T) {
	e := New(Options{FailurePercent: 10, Seed: 42})
	var failed int
	const n = 5000
	for i := 0; i < n; i++ {
		if e.Invoke(context.Background(), req("m", 1)).Kind() == worklet.KindDownstream {
			failed++
		}
	}
	require.InDelta(t, 0.10, float64(failed)/n, 0.03)
}

func TestInvoke_HonoursCancellation(t *testing.T) {
	e := New(Options{MaxLatencyMs: 100, SleepPerUnit: time.Hour, Seed: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var res worklet.Result
	for i := 0; i < 10; i++ {
		res = e.Invoke(ctx, req("m", 1))
		if res.Failure != nil {
			break
		}
	}
	require.NotNil(t, res.Failure)
	require.Equal(t, worklet.KindTransport, res.Kind())
}

func TestHandler_Invoke(t *testing.T) {
	h := NewHandler(New(Options{FailurePercent: 0, Seed: 9}), logger.NewNop())

	body := `{"worklet_input":{"model_id":"m1","input":[3,6,9]}}`
	r := httptest.NewRequest(http.MethodPost, "/invoke", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		WorkletOutput []int64 `json:"worklet_output"`
		Success       bool    `json:"success"`
		LatencyMs     int64   `json:"latency_ms"`
		ErrorLog      string  `json:"error_log"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	require.True(t, out.Success)
	require.Equal(t, []int64{2, 4, 6}, out.WorkletOutput)
}

func TestHandler_RejectsInvalidBodies(t *testing.T) {
	h := NewHandler(New(Options{Seed: 9}), logger.NewNop())

	for _, body := range []string{
		`{`,
		`{}`,
		`{"worklet_input":{"input":[1]}}`,
		`{"worklet_input":{"model_id":"m"}}`,
		`{"worklet_input":{"model_id":"m","input":["a"]}}`,
	} {
		r := httptest.NewRequest(http.MethodPost, "/invoke", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, body)
	}
}

func TestHandler_Health(t *testing.T) {
	h := NewHandler(New(Options{Seed: 9}), logger.NewNop())
	for _, path := range []string{"/healthz", "/healtz"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Body.String(), "healthy")
	}
}
