// Package metrics prometheus-коллекторы сервера.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholardesk_http_requests_total",
			Help: "Number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scholardesk_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ResourcesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scholardesk_resources_created_total",
			Help: "Number of academic resources created",
		},
	)

	UploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scholardesk_uploaded_bytes_total",
			Help: "Total size of stored uploads in bytes",
		},
	)
)

var registerOnce sync.Once

// Register регистрирует коллекторы в реестре по умолчанию, повторные вызовы ничего не делают.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, HTTPDuration, ResourcesCreated, UploadedBytes)
	})
}

// Handler эндпоинт /metrics.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// ObserveRequest учитывает завершённый HTTP-запрос.
func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
