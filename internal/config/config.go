package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`

	// CORSOrigins replaces the built-in local development origins when set.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

const (
	WorkletTypeHTTP = "http"
	WorkletTypeMock = "mock"
)

type WorkletConfig struct {
	// Type is "http" (call URL) or "mock" (in-process fake worklet).
	Type string `json:"type" yaml:"type"`

	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Authorization is sent verbatim as the Authorization header when set,
	// e.g. "Api-Key abc" or "Bearer abc".
	Authorization string `json:"authorization,omitempty" yaml:"authorization,omitempty"`

	// Timeout bounds one downstream call. Zero leaves it to the transport.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Mock MockConfig `json:"mock,omitempty" yaml:"mock,omitempty"`
}

type MockConfig struct {
	FailurePercent int      `json:"failure_percent" yaml:"failure_percent"`
	MaxLatencyMs   int      `json:"max_latency_ms" yaml:"max_latency_ms"`
	SleepPerUnit   Duration `json:"sleep_per_unit" yaml:"sleep_per_unit"`
}

type MetricsConfig struct {
	// LatencyBuckets are histogram upper bounds in seconds.
	LatencyBuckets []float64 `json:"latency_buckets,omitempty" yaml:"latency_buckets,omitempty"`

	// DefaultHistoryLimit applies when /metrics/history omits limit.
	DefaultHistoryLimit int `json:"default_history_limit,omitempty" yaml:"default_history_limit,omitempty"`
}

type Config struct {
	Env            string        `json:"env" yaml:"env"`
	HTTP           HTTPConfig    `json:"http" yaml:"http"`
	Worklet        WorkletConfig `json:"worklet" yaml:"worklet"`
	Metrics        MetricsConfig `json:"metrics" yaml:"metrics"`
	SeedSampleData bool          `json:"seed_sample_data" yaml:"seed_sample_data"`
}
