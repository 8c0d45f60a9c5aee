package middleware

import (
	"ScholarDesk/internal/metrics"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// WithMetrics считает запросы по шаблону маршрута chi, а не по сырому пути.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newRecorder(w)

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.ObserveRequest(r.Method, route, rw.data.status, time.Since(start))
	})
}
