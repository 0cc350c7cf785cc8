package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric namespace shared by every series the proxy exports.
const (
	Namespace = "deepseek"
	Subsystem = "proxy"
)

// Collector registers and records all proxy metrics. It is safe for
// concurrent use and satisfies both the handler-level recorder and the
// dispatcher observer interfaces.
type Collector struct {
	registry *prometheus.Registry

	// Request-level series.
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec

	// Attempt-level series fed by the dispatcher.
	attemptsTotal       *prometheus.CounterVec
	promotionsTotal     *prometheus.CounterVec
	consecutiveFailures prometheus.Gauge
}

// NewCollector creates a collector with all series registered. If registry is
// nil a fresh one is created, keeping proxy metrics isolated from the global
// default registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "requests_total",
				Help:      "Total number of chat completion requests processed",
			},
			[]string{"model", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end request duration in seconds",
				// Optimized for LLM latencies (100ms - 10m).
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"model"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "tokens_total",
				Help:      "Total number of tokens processed",
			},
			[]string{"model", "type"},
		),

		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "attempts_total",
				Help:      "Upstream attempts by model and outcome",
			},
			[]string{"model", "outcome"},
		),

		promotionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "fallback_promotions_total",
				Help:      "Sticky promotions of a fallback model to current",
			},
			[]string{"from", "to"},
		),

		consecutiveFailures: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "consecutive_failures",
				Help:      "Consecutive fully-exhausted request chains",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.tokensTotal,
		c.attemptsTotal,
		c.promotionsTotal,
		c.consecutiveFailures,
	)

	return c
}

// ObserveRequest records one completed request: its serving model, HTTP
// status, and end-to-end duration.
func (c *Collector) ObserveRequest(model, status string, seconds float64) {
	c.requestsTotal.WithLabelValues(model, status).Inc()
	c.requestDuration.WithLabelValues(model).Observe(seconds)
}

// ObserveTokens records prompt and completion token throughput.
func (c *Collector) ObserveTokens(model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		c.tokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.tokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// ObserveAttempt records one upstream attempt outcome for a model.
func (c *Collector) ObserveAttempt(model, outcome string) {
	c.attemptsTotal.WithLabelValues(model, outcome).Inc()
}

// ObservePromotion records a fallback model being promoted to current.
func (c *Collector) ObservePromotion(from, to string) {
	c.promotionsTotal.WithLabelValues(from, to).Inc()
}

// ObserveFailureCount tracks the routing state's consecutive failure count.
func (c *Collector) ObserveFailureCount(n int) {
	c.consecutiveFailures.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
