package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls metric naming and histogram resolution.
type Config struct {
	// Namespace is the metric name prefix. Default: "atlas".
	Namespace string

	// DurationBuckets are the histogram buckets for pipeline duration,
	// in seconds.
	DurationBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Namespace:       "atlas",
		DurationBuckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}
}

// Metrics tracks validation pipeline and HTTP metrics.
//
// Metrics:
//   - atlas_validations_total: validation count by outcome
//   - atlas_validation_duration_seconds: pipeline duration histogram
//   - atlas_validation_errors_total: error records emitted, by stage
//   - atlas_ruleset_reloads_total: ruleset reload count by status
//   - atlas_http_requests_total: HTTP request count by method, path, code
type Metrics struct {
	registry *prometheus.Registry

	validationsTotal   *prometheus.CounterVec
	validationDuration prometheus.Histogram
	errorsTotal        *prometheus.CounterVec
	reloadsTotal       *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
}

// New creates the metric set and registers it, along with the standard Go
// and process collectors, on a fresh registry.
func New(cfg *Config) *Metrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "atlas"
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = DefaultConfig().DurationBuckets
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validations_total",
				Help:      "Total number of validation requests processed",
			},
			[]string{"outcome"},
		),

		validationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of the validation pipeline in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of error records emitted, by pipeline stage",
			},
			[]string{"stage"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ruleset_reloads_total",
				Help:      "Total number of ruleset reloads",
			},
			[]string{"status"},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "code"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.validationsTotal,
		m.validationDuration,
		m.errorsTotal,
		m.reloadsTotal,
		m.httpRequestsTotal,
	)

	return m
}

// RecordValidation records one completed validation request.
func (m *Metrics) RecordValidation(outcome string, duration time.Duration) {
	m.validationsTotal.WithLabelValues(outcome).Inc()
	m.validationDuration.Observe(duration.Seconds())
}

// RecordErrors records error records emitted by a pipeline stage.
func (m *Metrics) RecordErrors(stage string, count int) {
	if count > 0 {
		m.errorsTotal.WithLabelValues(stage).Add(float64(count))
	}
}

// RecordReload records a ruleset reload attempt.
func (m *Metrics) RecordReload(status string) {
	m.reloadsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, code string) {
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the Prometheus exposition
// format for this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
