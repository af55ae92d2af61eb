package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "money_manager_mcp"

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP transport metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	ToolErrors   *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamRetries  *prometheus.CounterVec

	// Session metrics
	SessionCookies prometheus.Gauge
	SessionSaves   *prometheus.CounterVec
	SessionClears  prometheus.Counter

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for JSON reporting
type Snapshot struct {
	ToolCalls        int64   `json:"tool_calls"`
	ToolErrors       int64   `json:"tool_errors"`
	UpstreamRequests int64   `json:"upstream_requests"`
	UpstreamRetries  int64   `json:"upstream_retries"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP transport requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP transport request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),

		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_seconds",
				Help:      "Tool call duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"tool"},
		),
		ToolErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_errors_total",
				Help:      "Total number of failed tool calls by error category",
			},
			[]string{"tool", "category", "code"},
		),

		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of logical upstream requests",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Upstream request duration including retries",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "endpoint"},
		),
		UpstreamRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_retries_total",
				Help:      "Total number of upstream retries by failure code",
			},
			[]string{"endpoint", "code"},
		),

		SessionCookies: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "session_cookies",
				Help:      "Number of live cookies in the upstream session",
			},
		),
		SessionSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_saves_total",
				Help:      "Total number of session file writes",
			},
			[]string{"result"},
		),
		SessionClears: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_clears_total",
				Help:      "Total number of session resets",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP transport request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordToolCall records a completed tool call. category and code are empty
// on success.
func (m *Metrics) RecordToolCall(tool string, duration time.Duration, category, code string) {
	if m == nil {
		return
	}
	status := "success"
	if code != "" {
		status = "error"
		m.ToolErrors.WithLabelValues(tool, category, code).Inc()
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ToolCalls++
	if code != "" {
		m.snapshot.ToolErrors++
	}
	m.mu.Unlock()
}

// RecordUpstream records one logical upstream request. outcome is
// "success" or the classified error code.
func (m *Metrics) RecordUpstream(method, endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(method, endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.UpstreamRequests++
	m.mu.Unlock()
}

// RecordRetry records a retried upstream attempt
func (m *Metrics) RecordRetry(endpoint, code string) {
	if m == nil {
		return
	}
	m.UpstreamRetries.WithLabelValues(endpoint, code).Inc()

	m.mu.Lock()
	m.snapshot.UpstreamRetries++
	m.mu.Unlock()
}

// RecordSessionSave records a session file write
func (m *Metrics) RecordSessionSave(err error, cookies int) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.SessionSaves.WithLabelValues(result).Inc()
	m.SessionCookies.Set(float64(cookies))
}

// RecordSessionClear records a session reset
func (m *Metrics) RecordSessionClear() {
	if m == nil {
		return
	}
	m.SessionClears.Inc()
	m.SessionCookies.Set(0)
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
