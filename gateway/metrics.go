package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atom",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served by the gateway",
		},
		[]string{"route", "method", "code"},
	)

	metricRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atom",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"route"},
	)

	metricInvocationsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atom",
			Subsystem: "gateway",
			Name:      "invocations_scheduled_total",
			Help:      "Total number of invocations scheduled via the API",
		},
		[]string{"action"},
	)

	metricRunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "atom",
			Subsystem: "gateway",
			Name:      "runs_started_total",
			Help:      "Total number of pipeline runs started via the API",
		},
	)

	metricApprovalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atom",
			Subsystem: "gateway",
			Name:      "approval_decisions_total",
			Help:      "Total number of approval decisions recorded via the API",
		},
		[]string{"outcome"}, // "approved" or "rejected"
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records a request counter and a latency histogram per route
// template.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, r)
		metricRequests.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		metricRequestDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	})
}
