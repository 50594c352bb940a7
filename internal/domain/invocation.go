package domain

import (
	"encoding/json"
	"math"
	"time"
)

// InvocationRecord is one entry of the append-only invocation log.
type InvocationRecord struct {
	ID         int64     `json:"id"`
	ModelID    string    `json:"model_id"`
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
	LatencyMs  int64     `json:"latency_ms"`
	ErrorLog   string    `json:"error_log"`
	InputSize  int       `json:"input_size"`
	OutputSize int       `json:"output_size"`
}

// InvocationInput is what the proxy hands to the metrics store; id and
// timestamp are assigned on record.
type InvocationInput struct {
	ModelID    string
	Success    bool
	LatencyMs  int64
	ErrorLog   string
	InputSize  int
	OutputSize int
}

// HistoryQuery selects a window of the invocation log. A nil Limit means
// unbounded.
type HistoryQuery struct {
	ModelID *string
	Limit   *int
	Offset  int
}

const minLatencySentinel = math.MaxInt64

// ModelStats is the running aggregate for one model id.
type ModelStats struct {
	ModelID               string     `json:"model_id"`
	TotalInvocations      int64      `json:"total_invocations"`
	SuccessfulInvocations int64      `json:"successful_invocations"`
	FailedInvocations     int64      `json:"failed_invocations"`
	TotalLatencyMs        int64      `json:"total_latency_ms"`
	AverageLatencyMs      float64    `json:"average_latency_ms"`
	MinLatencyMs          int64      `json:"min_latency_ms"`
	MaxLatencyMs          int64      `json:"max_latency_ms"`
	LastInvocation        *time.Time `json:"last_invocation"`
}

func NewModelStats(modelID string) *ModelStats {
	return &ModelStats{ModelID: modelID, MinLatencyMs: minLatencySentinel}
}

// Observe folds one record into the aggregate.
func (s *ModelStats) Observe(rec InvocationRecord) {
	s.TotalInvocations++
	if rec.Success {
		s.SuccessfulInvocations++
	} else {
		s.FailedInvocations++
	}
	s.TotalLatencyMs += rec.LatencyMs
	s.AverageLatencyMs = float64(s.TotalLatencyMs) / float64(s.TotalInvocations)
	if rec.LatencyMs < s.MinLatencyMs {
		s.MinLatencyMs = rec.LatencyMs
	}
	if rec.LatencyMs > s.MaxLatencyMs {
		s.MaxLatencyMs = rec.LatencyMs
	}
	ts := rec.Timestamp
	s.LastInvocation = &ts
}

func (s ModelStats) SuccessRate() float64 {
	if s.TotalInvocations == 0 {
		return 0
	}
	return float64(s.SuccessfulInvocations) / float64(s.TotalInvocations) * 100
}

func (s ModelStats) FailureRate() float64 {
	return 100 - s.SuccessRate()
}

func (s ModelStats) MarshalJSON() ([]byte, error) {
	type plain ModelStats
	return json.Marshal(struct {
		plain
		SuccessRate float64 `json:"success_rate"`
		FailureRate float64 `json:"failure_rate"`
	}{
		plain:       plain(s),
		SuccessRate: s.SuccessRate(),
		FailureRate: s.FailureRate(),
	})
}
