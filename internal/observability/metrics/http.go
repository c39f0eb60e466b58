package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	reportTotal      *prometheus.CounterVec
	reportDuration   *prometheus.HistogramVec
	predictionsTotal *prometheus.CounterVec
	exportsTotal     *prometheus.CounterVec
	pendingDistricts prometheus.Gauge
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hemoboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hemoboard",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reportTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoboard",
			Subsystem: "analytics",
			Name:      "reports_total",
			Help:      "Total report computations by report and status.",
		},
		[]string{"service", "report", "status"},
	)
	reportDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hemoboard",
			Subsystem: "analytics",
			Name:      "report_duration_seconds",
			Help:      "Report computation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "report"},
	)
	predictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoboard",
			Subsystem: "analytics",
			Name:      "predictions_total",
			Help:      "Total eligibility predictions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoboard",
			Subsystem: "analytics",
			Name:      "exports_total",
			Help:      "Total workbook exports by status.",
		},
		[]string{"service", "status"},
	)
	pendingDistricts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hemoboard",
			Subsystem: "geocode",
			Name:      "pending_districts",
			Help:      "Districts awaiting geocoding as of the last map report.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		reportTotal, reportDuration, predictionsTotal, exportsTotal, pendingDistricts,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		reportTotal:      reportTotal,
		reportDuration:   reportDuration,
		predictionsTotal: predictionsTotal,
		exportsTotal:     exportsTotal,
		pendingDistricts: pendingDistricts,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordReport(service, report string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reportTotal.WithLabelValues(service, report, status).Inc()
	m.reportDuration.WithLabelValues(service, report).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordPrediction(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.predictionsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.exportsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) SetPendingDistricts(count int) {
	m.pendingDistricts.Set(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
