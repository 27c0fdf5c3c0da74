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

	workflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Total number of re-engagement workflow runs",
		},
		[]string{"status"},
	)

	leadsEnrolledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_enrolled_total",
			Help: "Total number of leads enrolled into sequences",
		},
	)

	engagementEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_total",
			Help: "Total number of tracked engagement events",
		},
		[]string{"type"},
	)

	dripEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drip_emails_total",
			Help: "Total number of drip sequence emails attempted",
		},
		[]string{"result"},
	)
)

// RecordWorkflowRun counts one workflow run by outcome status.
func RecordWorkflowRun(status string) {
	workflowRunsTotal.WithLabelValues(status).Inc()
}

func AddLeadsEnrolled(n int) {
	leadsEnrolledTotal.Add(float64(n))
}

func RecordEngagementEvent(kind string) {
	engagementEventsTotal.WithLabelValues(kind).Inc()
}

func RecordDripEmail(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	dripEmailsTotal.WithLabelValues(result).Inc()
}

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

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
