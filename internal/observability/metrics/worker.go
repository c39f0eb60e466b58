package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	geocodeTotal    *prometheus.CounterVec
	geocodeDuration *prometheus.HistogramVec
	geocodeInFlight prometheus.Gauge
	cacheTotal      *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	geocodeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoboard",
			Subsystem: "worker",
			Name:      "geocode_total",
			Help:      "Total geocoding attempts by status.",
		},
		[]string{"service", "status"},
	)
	geocodeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hemoboard",
			Subsystem: "worker",
			Name:      "geocode_duration_seconds",
			Help:      "District geocoding duration in seconds by status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service", "status"},
	)
	geocodeInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hemoboard",
			Subsystem: "worker",
			Name:      "geocode_in_flight",
			Help:      "Number of in-flight geocoding tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hemoboard",
			Subsystem: "worker",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(geocodeTotal, geocodeDuration, geocodeInFlight, cacheTotal)

	return &WorkerMetrics{
		registry:        registry,
		geocodeTotal:    geocodeTotal,
		geocodeDuration: geocodeDuration,
		geocodeInFlight: geocodeInFlight,
		cacheTotal:      cacheTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartGeocode() {
	m.geocodeInFlight.Inc()
}

func (m *WorkerMetrics) FinishGeocode(service string, err error, duration time.Duration) {
	m.geocodeInFlight.Dec()
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.geocodeTotal.WithLabelValues(service, status).Inc()
	m.geocodeDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordCacheLookup(service string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(service, result).Inc()
}
