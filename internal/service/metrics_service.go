package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer, the
// reference cache and the booking engine.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	bookingOperations *prometheus.CounterVec
	bookingConflicts  *prometheus.CounterVec
	bookingWrite      *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "tenant", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "tenant", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reference_cache_latency_seconds",
		Help:    "Latency for reference cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reference_cache_write_seconds",
		Help:    "Latency for reference cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reference_cache_hits_total",
		Help: "Total reference cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reference_cache_misses_total",
		Help: "Total reference cache misses",
	})

	bookingOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_booking_operations_total",
		Help: "Booking operations by kind and outcome",
	}, []string{"operation", "outcome"})

	bookingConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_booking_conflicts_total",
		Help: "Rejected bookings by colliding resource axis",
	}, []string{"resource"})

	bookingWrite := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_booking_write_seconds",
		Help:    "Duration of the locked conflict scan and write",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		bookingOperations, bookingConflicts, bookingWrite, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		bookingOperations: bookingOperations,
		bookingConflicts:  bookingConflicts,
		bookingWrite:      bookingWrite,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics. Requests rejected before a tenant was
// resolved are labelled "none".
func (m *MetricsService) ObserveHTTPRequest(method, route, tenantID string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if tenantID == "" {
		tenantID = "none"
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, route, tenantID, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, route, tenantID, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordBookingOperation counts a booking operation outcome such as "ok", "conflict"
// or "error".
func (m *MetricsService) RecordBookingOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordConflict counts a rejected booking by the axis it collided on.
func (m *MetricsService) RecordConflict(resource models.ResourceKind) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(string(resource)).Inc()
}

// ObserveBookingWrite records how long the locked scan-and-write took.
func (m *MetricsService) ObserveBookingWrite(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.bookingWrite.WithLabelValues(operation).Observe(duration.Seconds())
}
