package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the ops server and the bootstrap routine.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
	seedRows          *prometheus.CounterVec
	migrationsApplied prometheus.Counter
	identityChanges   *prometheus.CounterVec
	lastBootstrap     prometheus.Gauge
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

	phaseDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bootstrap_phase_duration_seconds",
		Help:    "Duration of bootstrap phases",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase", "outcome"})

	seedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seed_rows_inserted_total",
		Help: "Seed rows written per table",
	}, []string{"table"})

	migrationsApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schema_migrations_applied_total",
		Help: "Schema migrations applied by this process",
	})

	identityChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_bootstrap_changes_total",
		Help: "Roles, users and role assignments created by the identity bootstrap",
	}, []string{"kind"})

	lastBootstrap := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bootstrap_last_success_timestamp_seconds",
		Help: "Unix time of the last successful bootstrap",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, phaseDuration, seedRows, migrationsApplied, identityChanges, lastBootstrap, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		phaseDuration:     phaseDuration,
		seedRows:          seedRows,
		migrationsApplied: migrationsApplied,
		identityChanges:   identityChanges,
		lastBootstrap:     lastBootstrap,
	}
}

// Registry exposes the underlying registry.
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveBootstrapPhase records how long a bootstrap phase took and whether it failed.
func (m *MetricsService) ObserveBootstrapPhase(phase string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.phaseDuration.WithLabelValues(phase, outcome).Observe(duration.Seconds())
}

// AddSeedRows counts rows written to a seeded table.
func (m *MetricsService) AddSeedRows(table string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.seedRows.WithLabelValues(table).Add(float64(rows))
}

// AddMigrations counts applied migrations.
func (m *MetricsService) AddMigrations(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.migrationsApplied.Add(float64(count))
}

// AddIdentityChanges counts identity rows created, keyed by kind (role, user, assignment).
func (m *MetricsService) AddIdentityChanges(kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.identityChanges.WithLabelValues(kind).Add(float64(count))
}

// MarkBootstrapSucceeded stamps the completion time of a bootstrap run.
func (m *MetricsService) MarkBootstrapSucceeded(at time.Time) {
	if m == nil {
		return
	}
	m.lastBootstrap.Set(float64(at.Unix()))
}
