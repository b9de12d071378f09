package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kiriman"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	batchesSubmittedTotal *prometheus.CounterVec
	readingsTotal         *prometheus.CounterVec
	batchSize             *prometheus.HistogramVec
	exportsTotal          *prometheus.CounterVec
	breakerOpen           *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	m := &HTTPServerMetrics{
		registry: prometheus.NewRegistry(),
		requestTotal: counterVec("http", "requests_total",
			"Total HTTP requests processed.", "service", "method", "path", "status"),
		requestDuration: histogramVec("http", "request_duration_seconds",
			"HTTP request duration in seconds.", prometheus.DefBuckets, "service", "method", "path"),
		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		batchesSubmittedTotal: counterVec("batches", "submitted_total",
			"Total persisted shipment batches.", "service"),
		readingsTotal: counterVec("batches", "readings_total",
			"Persisted weight readings by acceptance class.", "service", "class"),
		batchSize: histogramVec("batches", "readings_per_batch",
			"Distribution of readings per submitted batch.", []float64{10, 20, 50, 100, 200, 500, 1000}, "service"),
		exportsTotal: counterVec("exports", "served_total",
			"Total spreadsheet exports served by kind and status.", "service", "kind", "status"),
		breakerOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "resilience",
			Name:        "breaker_open",
			Help:        "1 while the circuit breaker of an outbound operation is open.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.batchesSubmittedTotal,
		m.readingsTotal,
		m.batchSize,
		m.exportsTotal,
		m.breakerOpen,
	)
	return m
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogramVec(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath folds batch ids so label cardinality stays bounded.
func normalizePath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/riwayat/")
	if !ok || rest == "" || rest == "search" {
		return path
	}
	if strings.HasSuffix(rest, "/export") {
		return "/api/riwayat/{id}/export"
	}
	return "/api/riwayat/{id}"
}

func (m *HTTPServerMetrics) RecordBatchSubmitted(service string, accepted, rejected int) {
	m.batchesSubmittedTotal.WithLabelValues(service).Inc()
	m.readingsTotal.WithLabelValues(service, "accepted").Add(float64(accepted))
	m.readingsTotal.WithLabelValues(service, "rejected").Add(float64(rejected))
	m.batchSize.WithLabelValues(service).Observe(float64(accepted + rejected))
}

func (m *HTTPServerMetrics) RecordExport(service, kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.exportsTotal.WithLabelValues(service, kind, status).Inc()
}

// SetBreakerOpen matches resilience.Config.OnStateChange.
func (m *HTTPServerMetrics) SetBreakerOpen(operation string, open bool) {
	value := 0.0
	if open {
		value = 1
	}
	m.breakerOpen.WithLabelValues(operation).Set(value)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
