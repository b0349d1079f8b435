package middleware

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// TrackerActionsTotal counts persisted log actions by kind
	// (log, remove, bulk, reset).
	TrackerActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_actions_total",
			Help: "Total number of persisted tracker actions",
		},
		[]string{"action"},
	)
	// TrackerSetbacksTotal counts renders in which a same-day meat event
	// archived the active achievements.
	TrackerSetbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_setbacks_total",
			Help: "Total number of achievement setbacks rendered",
		},
	)
)

// InitPrometheus registers the metrics. Call this from main.go
func InitPrometheus() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(TrackerActionsTotal)
	prometheus.MustRegister(TrackerSetbacksTotal)
}

// MonitorMiddleware wraps the router to track all request stats
func MonitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Initialize with 200 OK in case WriteHeader isn't called explicitly
		ww := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, http.StatusText(ww.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}

// BasicAuthMiddleware protects /metrics
func BasicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()

		metricsUser := os.Getenv("METRICS_USER")
		metricsPass := os.Getenv("METRICS_PASS")

		if !ok || user != metricsUser || pass != metricsPass {
			w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
