package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry. All methods are safe on a nil
// receiver so callers can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	invocations       *prometheus.CounterVec
	invocationLatency *prometheus.HistogramVec
	activeInvocations *prometheus.GaugeVec
	totalInvocations  *prometheus.GaugeVec
	successRate       *prometheus.GaugeVec
	apiRequests       *prometheus.CounterVec
	apiLatency        *prometheus.HistogramVec
	apiInflight       prometheus.Gauge
}

func NewMetrics(latencyBuckets []float64) *Metrics {
	if len(latencyBuckets) == 0 {
		latencyBuckets = prometheus.DefBuckets
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_invocations_total",
			Help: "Total number of model invocations",
		}, []string{"model_id", "status"}),
		invocationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "model_invocation_latency_seconds",
			Help:    "Latency of model invocations in seconds",
			Buckets: latencyBuckets,
		}, []string{"model_id"}),
		activeInvocations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "model_active_invocations",
			Help: "Number of active model invocations",
		}, []string{"model_id"}),
		totalInvocations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "model_total_invocations",
			Help: "Total number of invocations per model",
		}, []string{"model_id"}),
		successRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "model_success_rate",
			Help: "Success rate of model invocations as percentage",
		}, []string{"model_id"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invocations,
		m.invocationLatency,
		m.activeInvocations,
		m.totalInvocations,
		m.successRate,
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler renders the registry in the Prometheus text exposition format.
// Gather errors surface as HTTP 500.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func (m *Metrics) InvocationStarted(modelID string) {
	if m == nil {
		return
	}
	m.activeInvocations.WithLabelValues(modelID).Inc()
}

func (m *Metrics) InvocationFinished(modelID string) {
	if m == nil {
		return
	}
	m.activeInvocations.WithLabelValues(modelID).Dec()
}

func (m *Metrics) ObserveInvocation(modelID string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.invocations.WithLabelValues(modelID, status).Inc()
	m.invocationLatency.WithLabelValues(modelID).Observe(elapsed.Seconds())
}

// SetModelStats mirrors the metrics store aggregates into gauges.
func (m *Metrics) SetModelStats(modelID string, total int64, successRate float64) {
	if m == nil {
		return
	}
	m.totalInvocations.WithLabelValues(modelID).Set(float64(total))
	m.successRate.WithLabelValues(modelID).Set(successRate)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
