package metrics

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction outcomes
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for one ocr-hub process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	extractionsTotal   *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	pagesTotal         prometheus.Counter
	fallbacksTotal     *prometheus.CounterVec
	busyRejections     prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates all collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		extractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_hub_extractions_total",
				Help: "Total number of recognition runs by outcome",
			},
			[]string{"outcome"},
		),
		extractionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ocr_hub_extraction_duration_seconds",
				Help:    "Wall time of one recognition run",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		pagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ocr_hub_pages_recognized_total",
				Help: "Total number of images handed to an OCR engine",
			},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_hub_rasterizer_fallbacks_total",
				Help: "Total number of rasterizer fallbacks",
			},
			[]string{"from", "to"},
		),
		busyRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ocr_hub_busy_rejections_total",
				Help: "Captures rejected because a recognition was in flight",
			},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_hub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ocr_hub_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordExtraction records the outcome and duration of one recognition run
func (m *Metrics) RecordExtraction(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(outcome).Inc()
	m.extractionDuration.Observe(duration.Seconds())
}

// RecordPages counts images handed to an OCR engine
func (m *Metrics) RecordPages(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pagesTotal.Add(float64(n))
}

// RecordFallback counts one rasterizer fallback
func (m *Metrics) RecordFallback(from, to string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(from, to).Inc()
}

// RecordBusy counts one rejected concurrent capture
func (m *Metrics) RecordBusy() {
	if m == nil {
		return
	}
	m.busyRejections.Inc()
}

// MetricsMiddleware returns a Fiber middleware that collects HTTP metrics
func (m *Metrics) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		method := c.Method()

		err := c.Next()

		// Route pattern keeps ids out of the label set
		path := c.Route().Path
		status := statusClass(c.Response().StatusCode())
		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

		return err
	}
}

// HTTPHandler serves the registry in the Prometheus text format
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Handler returns a Fiber handler that exposes Prometheus metrics
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(m.HTTPHandler())
}

// statusClass returns the HTTP status class (2xx, 3xx, 4xx, 5xx)
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
