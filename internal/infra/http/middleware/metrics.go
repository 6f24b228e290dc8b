package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of emails delivered, by provider",
		},
		[]string{"provider"},
	)

	emailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Total number of email delivery failures, by error type",
		},
		[]string{"error_type"},
	)

	activationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_activations_total",
			Help: "Total number of lead activations, by outcome",
		},
		[]string{"outcome"},
	)

	emailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "email_queue_depth",
			Help: "Current number of queued welcome emails",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordEmailSent(provider string) {
	if provider == "" {
		provider = "unknown"
	}
	emailsSent.WithLabelValues(provider).Inc()
}

func RecordEmailFailure(errorType string) {
	emailsFailed.WithLabelValues(errorType).Inc()
}

func RecordActivations(outcome string, count int) {
	if count > 0 {
		activationsTotal.WithLabelValues(outcome).Add(float64(count))
	}
}

func SetEmailQueueDepth(depth int) {
	emailQueueDepth.Set(float64(depth))
}
