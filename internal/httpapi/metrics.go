package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsCollector holds the Prometheus series exported by the HTTP surface,
// each wired into its own registry rather than the global default so that
// constructing multiple routers in the same process (as the test suite
// does) never collides on a duplicate registration.
type metricsCollector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	forecastRuns    *prometheus.CounterVec
}

func newMetricsCollector() *metricsCollector {
	reg := prometheus.NewRegistry()

	m := &metricsCollector{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "equipcost",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by route and status.",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "equipcost",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		forecastRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "equipcost",
				Subsystem: "forecast",
				Name:      "runs_total",
				Help:      "Forecast generations by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.forecastRuns)
	return m
}

// middleware wraps every handler in request counting and duration
// observation, keyed by the matched chi route pattern so cardinality stays
// bounded regardless of path parameters.
func (m *metricsCollector) middleware(routePattern func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route := routePattern(r)
			m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusCapturingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (m *metricsCollector) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
