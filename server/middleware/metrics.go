package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brewgen/brewgen/server/metrics"
)

// PrometheusMetrics creates a middleware that records HTTP metrics.
func PrometheusMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			endpoint := r.URL.Path

			m.ActiveRequests.WithLabelValues(endpoint).Inc()
			defer m.ActiveRequests.WithLabelValues(endpoint).Dec()

			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			m.RequestDuration.WithLabelValues(endpoint).Observe(duration)
			m.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(rw.status)).Inc()

			if rw.status >= 400 {
				errType := "request"
				if rw.status >= 500 {
					errType = "upstream"
				}
				m.ErrorsTotal.WithLabelValues(errType).Inc()
			}
		})
	}
}

// statusRecorder captures the response status code for metric labels.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
