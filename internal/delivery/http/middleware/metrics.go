package middleware

import (
	"net/http"
	"time"

	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// Metrics records request counts and latencies labelled by chi route pattern
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)
		next.ServeHTTP(rw, r)
		metrics.ObserveHTTP(routePattern(r), r.Method, rw.statusCode, time.Since(start))
	})
}

// Timeout bounds the time a handler may take to respond
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"Request timeout"}`)
	}
}
