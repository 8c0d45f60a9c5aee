package middleware

import (
	"ScholarDesk/internal/audit"
	"net/http"
	"time"
)

// WithAudit записывает каждый завершённый запрос в журналы аудита.
func WithAudit(l *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newRecorder(w)

			next.ServeHTTP(rw, r)

			l.Record(audit.Entry{
				Time:      start,
				IP:        ClientIP(r),
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    rw.data.status,
				Duration:  time.Since(start),
				UserAgent: r.UserAgent(),
			})
		})
	}
}
