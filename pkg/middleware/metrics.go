package middleware

import (
	"net/http"
	"strconv"
	"time"

	"activity-booking/pkg/metrics"
)

// Metrics records request count and latency per method/status.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPLatency.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
