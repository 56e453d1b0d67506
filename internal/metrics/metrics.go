// Package metrics holds the Prometheus collectors of the admin server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "admin"

// Outcome labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         prometheus.Gauge

	LoginAttempts *prometheus.CounterVec

	Uploads        *prometheus.CounterVec
	UploadBytes    prometheus.Histogram
	BlobDeletes    *prometheus.CounterVec
	ProductChanges *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome code.",
			},
			[]string{"outcome"},
		),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "blob",
				Name:      "uploads_total",
				Help:      "Image uploads by result.",
			},
			[]string{"result"}, // success|failure|skipped
		),
		UploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "blob",
				Name:      "upload_bytes",
				Help:      "Size of uploaded images.",
				Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 6),
			},
		),
		BlobDeletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "blob",
				Name:      "deletes_total",
				Help:      "Blob deletions by result.",
			},
			[]string{"result"},
		),
		ProductChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "product_changes_total",
				Help:      "Product writes by operation.",
			},
			[]string{"op"}, // create|update|delete
		),
	}
	reg.MustRegister(
		m.RequestsTotal, m.RequestsDuration, m.InFlight,
		m.LoginAttempts,
		m.Uploads, m.UploadBytes, m.BlobDeletes, m.ProductChanges,
	)
	return m
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpload(result string, size int) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.UploadBytes.Observe(float64(size))
	}
}

func (m *Metrics) ObserveBlobDelete(result string) {
	if m == nil {
		return
	}
	m.BlobDeletes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveProductChange(op string) {
	if m == nil {
		return
	}
	m.ProductChanges.WithLabelValues(op).Inc()
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// route pattern is only known after routing
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.RequestsTotal.WithLabelValues(r.Method, route, code).Inc()
		m.RequestsDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
	})
}
