package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/worklet-invoker/internal/platform/envutil"
)

// DefaultLatencyBuckets are the histogram bounds, in seconds, for invocation
// latency.
var DefaultLatencyBuckets = []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

const DefaultMockURL = "http://localhost:8001/invoke"

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got yaml kind %d", node.Kind)
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(node.Value), 10, 64); err == nil {
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   10 << 20,
		},
		Worklet: WorkletConfig{
			Type: WorkletTypeHTTP,
			URL:  DefaultMockURL,
			Mock: MockConfig{
				FailurePercent: 10,
				MaxLatencyMs:   100,
				SleepPerUnit:   Duration{Duration: 10 * time.Millisecond},
			},
		},
		Metrics: MetricsConfig{
			LatencyBuckets:      append([]float64(nil), DefaultLatencyBuckets...),
			DefaultHistoryLimit: 100,
		},
		SeedSampleData: true,
	}
}

// Load builds the process config: defaults, then an optional file, then env
// overrides, then validation.
func Load() (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(os.Getenv("INVOKER_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
				p := filepath.Join(wd, "config", name)
				if _, err := os.Stat(p); err == nil {
					cfgPath = p
					break
				}
			}
		}
	}
	if cfgPath != "" {
		if err := LoadFile(cfgPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes path over dst. Fields the file omits keep their current
// values.
func LoadFile(path string, dst *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, dst); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, dst); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("INVOKER_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Worklet.Type = envutil.String("WORKLET_TYPE", cfg.Worklet.Type)
	cfg.Worklet.URL = envutil.String("WORKLET_URL", cfg.Worklet.URL)
	cfg.Worklet.Authorization = envutil.String("WORKLET_AUTHORIZATION", cfg.Worklet.Authorization)
	cfg.SeedSampleData = envutil.Bool("INVOKER_SEED_SAMPLE_DATA", cfg.SeedSampleData)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":8000"
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		c.HTTP.MaxRequestBytes = 10 << 20
	}

	w := &c.Worklet
	w.Type = strings.ToLower(strings.TrimSpace(w.Type))
	w.URL = strings.TrimSpace(w.URL)
	w.Authorization = strings.TrimSpace(w.Authorization)
	switch w.Type {
	case "", WorkletTypeHTTP:
		w.Type = WorkletTypeHTTP
		if w.URL == "" {
			return errors.New("worklet.url is required for worklet.type=http")
		}
	case WorkletTypeMock:
	default:
		return fmt.Errorf("unsupported worklet.type %q", w.Type)
	}
	if w.Timeout.Duration < 0 {
		return errors.New("worklet.timeout must not be negative")
	}
	if w.Mock.FailurePercent < 0 || w.Mock.FailurePercent > 100 {
		return fmt.Errorf("worklet.mock.failure_percent must be within [0,100], got %d", w.Mock.FailurePercent)
	}
	if w.Mock.MaxLatencyMs <= 0 {
		w.Mock.MaxLatencyMs = 100
	}

	if len(c.Metrics.LatencyBuckets) == 0 {
		c.Metrics.LatencyBuckets = append([]float64(nil), DefaultLatencyBuckets...)
	}
	for i := 1; i < len(c.Metrics.LatencyBuckets); i++ {
		if c.Metrics.LatencyBuckets[i] <= c.Metrics.LatencyBuckets[i-1] {
			return errors.New("metrics.latency_buckets must be strictly increasing")
		}
	}
	if c.Metrics.DefaultHistoryLimit <= 0 {
		c.Metrics.DefaultHistoryLimit = 100
	}
	return nil
}
