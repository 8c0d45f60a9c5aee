package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var sugar = zap.NewNop().Sugar()

// SetLogger задаёт логгер для WithLogging.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		sugar = l
	}
}

// WithLogging пишет в консоль метод, uri, статус, размер и длительность запроса.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newRecorder(w)

		next.ServeHTTP(rw, r)

		sugar.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", rw.data.status,
			"duration", time.Since(start),
			"size", rw.data.size,
		)
	})
}
