package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight summary served next to the Prometheus feed.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	AuditsTotal              uint64    `json:"audits_total"`
	AuditFailures            uint64    `json:"audit_failures"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	ActiveSessions           int       `json:"active_sessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation. All methods are
// safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	auditDuration   *prometheus.HistogramVec
	treeEdits       *prometheus.CounterVec
	imports         *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	activeSessions  prometheus.Gauge

	requestCount         uint64
	requestDurationTotal uint64
	auditCount           uint64
	auditFailureCount    uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	sessionCount         int64
}

// NewMetricsService registers core Prometheus collectors.
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

	auditDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audit_call_duration_seconds",
		Help:    "Duration of calls to the remote audit service",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900, 1800, 3600},
	}, []string{"outcome"})

	treeEdits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_tree_edits_total",
		Help: "Report tree edits by operation and result",
	}, []string{"operation", "result"})

	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_imports_total",
		Help: "Report imports by outcome",
	}, []string{"outcome"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_cache_lookups_total",
		Help: "Audit cache lookups by result",
	}, []string{"result"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "Editing sessions held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, auditDuration, treeEdits, imports, cacheLookups, activeSessions, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		auditDuration:   auditDuration,
		treeEdits:       treeEdits,
		imports:         imports,
		cacheLookups:    cacheLookups,
		activeSessions:  activeSessions,
	}
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

// ObserveAudit records one remote audit call.
func (m *MetricsService) ObserveAudit(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
		atomic.AddUint64(&m.auditFailureCount, 1)
	}
	m.auditDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.auditCount, 1)
}

// RecordTreeEdit counts a report edit. result is "ok" or an error code.
func (m *MetricsService) RecordTreeEdit(operation, result string) {
	if m == nil {
		return
	}
	m.treeEdits.WithLabelValues(operation, result).Inc()
}

// RecordImport counts an import attempt.
func (m *MetricsService) RecordImport(success bool) {
	if m == nil {
		return
	}
	if success {
		m.imports.WithLabelValues("success").Inc()
		return
	}
	m.imports.WithLabelValues("invalid").Inc()
}

// RecordCacheLookup counts an audit cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// SetActiveSessions publishes the live session count.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
	atomic.StoreInt64(&m.sessionCount, int64(n))
}

// Snapshot returns aggregated metrics.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		AuditsTotal:              atomic.LoadUint64(&m.auditCount),
		AuditFailures:            atomic.LoadUint64(&m.auditFailureCount),
		CacheHitRatio:            ratio,
		ActiveSessions:           int(atomic.LoadInt64(&m.sessionCount)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
