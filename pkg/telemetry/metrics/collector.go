package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"switchyard-hq/spur/pkg/config"
)

// Collector owns the Prometheus registry and the metrics spur exposes.
//
// Metrics:
//   - spur_requests_total{route, method, status}: request count per route
//   - spur_request_duration_seconds{route}: request latency histogram
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates and registers the spur metrics. The registry also
// carries the standard Go runtime and process collectors.
func NewCollector(cfg *config.MetricsConfig) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requestsTotal,
		c.requestDuration,
	)

	return c
}

// Observe records one completed request.
func (c *Collector) Observe(route, method string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(route, method, statusLabel(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Middleware instruments a route's handler. The route label is fixed per
// mount point so path cardinality stays bounded regardless of what gets
// forwarded.
func (c *Collector) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				// Count aborted relays too before re-raising.
				c.Observe(route, r.Method, sw.status, time.Since(start))
				if err := recover(); err != nil {
					panic(err)
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// statusLabel buckets status codes into their class ("2xx", "5xx") to
// keep label cardinality low.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// statusWriter captures the response status for the metrics labels.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader captures the status code before writing.
func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.status = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

// Write ensures a captured status for implicit 200s.
func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.written = true
	return sw.ResponseWriter.Write(b)
}

// Flush passes flushes through for streamed relays.
func (sw *statusWriter) Flush() {
	if flusher, ok := sw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
