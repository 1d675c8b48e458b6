// Package prometheus exports sync outcomes as Prometheus metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.SyncMetrics = (*Metrics)(nil)

const namespace = "sercha_drive"

// Metrics records sync runs and file outcomes on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runChanges   *prometheus.CounterVec
	runErrors    *prometheus.CounterVec
	files        *prometheus.CounterVec
	vectors      prometheus.Counter
	lastComplete *prometheus.GaugeVec
}

// New creates and registers the sync metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Finalised sync runs by type and status.",
		}, []string{"type", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Wall time of finalised sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14),
		}, []string{"type"}),
		runChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_changes_processed_total",
			Help:      "Files processed by sync runs.",
		}, []string{"type"}),
		runErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_errors_total",
			Help:      "Errors recorded by sync runs.",
		}, []string{"type"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_syncs_total",
			Help:      "Single-file sync outcomes by result and error kind.",
		}, []string{"result", "kind"}),
		vectors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vectors_written_total",
			Help:      "Chunk vectors written by successful file syncs.",
		}),
		lastComplete: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_completed_sync_timestamp_seconds",
			Help:      "End time of each user's last completed sync.",
		}, []string{"user"}),
	}
	m.registry.MustRegister(m.runs, m.runDuration, m.runChanges, m.runErrors, m.files, m.vectors, m.lastComplete)
	return m
}

// ObserveRun records a finalised sync run.
func (m *Metrics) ObserveRun(log *domain.SyncLog) {
	if log == nil || !log.Finalised() {
		return
	}
	syncType := string(log.SyncType)
	m.runs.WithLabelValues(syncType, string(log.Status)).Inc()
	m.runChanges.WithLabelValues(syncType).Add(float64(log.ChangesProcessed))
	m.runErrors.WithLabelValues(syncType).Add(float64(len(log.Errors)))
	if d := log.EndTime.Sub(log.StartTime); d >= 0 {
		m.runDuration.WithLabelValues(syncType).Observe(d.Seconds())
	}
	if log.Status == domain.SyncCompleted {
		m.lastComplete.WithLabelValues(log.UserID).Set(float64(log.EndTime.Unix()))
	}
}

// ObserveFile records the outcome of one file sync.
func (m *Metrics) ObserveFile(_ string, result domain.IndexResult) {
	if result.Success {
		m.files.WithLabelValues("success", "").Inc()
		m.vectors.Add(float64(result.VectorsUpserted))
		return
	}
	kind := string(domain.KindOf(result.Error()))
	m.files.WithLabelValues("failure", kind).Inc()
}

// Registry returns the registry holding the sync metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
