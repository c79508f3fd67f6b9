package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	intents           *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	joinRequests      *prometheus.CounterVec
	themeChanges      *prometheus.CounterVec

	requestCount           uint64
	requestDurationTotal   uint64
	recomputeCount         uint64
	recomputeDurationTotal uint64
	joinCount              uint64
	sessionCount           int64
}

// NewMetricsService registers the portal's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	recomputeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "directory_recompute_duration_seconds",
		Help:    "Duration of a full search, filter, sort and paginate pass",
		Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
	}, []string{"origin"})

	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_intents_total",
		Help: "Directory session intents by type",
	}, []string{"type"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "directory_sessions_active",
		Help: "Open interactive directory sessions",
	})

	joinRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "club_join_requests_total",
		Help: "Club join requests by outcome",
	}, []string{"status"})

	themeChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "theme_changes_total",
		Help: "Theme preference changes by resulting theme",
	}, []string{"theme"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, recomputeDuration, intents, activeSessions, joinRequests, themeChanges, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		recomputeDuration: recomputeDuration,
		intents:           intents,
		activeSessions:    activeSessions,
		joinRequests:      joinRequests,
		themeChanges:      themeChanges,
	}
}

// Registry exposes the underlying registry, mainly for tests.
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveRecompute records one directory recompute. origin is "list" or "session".
func (m *MetricsService) ObserveRecompute(origin string, duration time.Duration) {
	if m == nil {
		return
	}
	m.recomputeDuration.WithLabelValues(origin).Observe(duration.Seconds())
	atomic.AddUint64(&m.recomputeCount, 1)
	atomic.AddUint64(&m.recomputeDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordIntent counts a session intent.
func (m *MetricsService) RecordIntent(kind string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(kind).Inc()
}

// SessionOpened increments the active session gauge.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	atomic.AddInt64(&m.sessionCount, 1)
}

// SessionClosed decrements the active session gauge.
func (m *MetricsService) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	atomic.AddInt64(&m.sessionCount, -1)
}

// RecordJoin counts a join request by outcome.
func (m *MetricsService) RecordJoin(status models.JoinStatus) {
	if m == nil {
		return
	}
	m.joinRequests.WithLabelValues(string(status)).Inc()
	atomic.AddUint64(&m.joinCount, 1)
}

// RecordThemeChange counts a theme change.
func (m *MetricsService) RecordThemeChange(theme models.Theme) {
	if m == nil {
		return
	}
	m.themeChanges.WithLabelValues(string(theme)).Inc()
}

// Snapshot returns aggregated metrics suitable for the metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	recomputes := atomic.LoadUint64(&m.recomputeCount)
	recomputeDuration := atomic.LoadUint64(&m.recomputeDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgRecomputeMs float64
	if recomputes > 0 {
		avgRecomputeMs = float64(recomputeDuration) / float64(recomputes) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		Recomputes:               recomputes,
		AverageRecomputeMs:       avgRecomputeMs,
		ActiveSessions:           atomic.LoadInt64(&m.sessionCount),
		JoinRequests:             atomic.LoadUint64(&m.joinCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
