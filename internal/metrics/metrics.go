// Package metrics exposes Prometheus counters for the import and photo pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "photoalbum"

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	importedRows *prometheus.CounterVec
	skippedRows  *prometheus.CounterVec
	stageFailed  *prometheus.CounterVec

	photosFound   *prometheus.CounterVec
	photosMatched *prometheus.CounterVec
	photosMissing *prometheus.CounterVec
	photoErrors   *prometheus.CounterVec
	failedFlushes prometheus.Counter
	flushLatency  prometheus.Histogram

	activeScans prometheus.Gauge
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		importedRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Rows presented to the store per import stage.",
		}, []string{"stage"}),
		skippedRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_skipped_rows_total",
			Help:      "Rows skipped per import stage (missing fields or unresolved parent).",
		}, []string{"stage"}),
		stageFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_stage_failures_total",
			Help:      "Import stages aborted by a malformed file or store error.",
		}, []string{"stage"}),
		photosFound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_found_total",
			Help:      "Image files discovered.",
		}, []string{"mode"}),
		photosMatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_matched_total",
			Help:      "Image files matched to a student.",
		}, []string{"mode"}),
		photosMissing: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_missing_total",
			Help:      "Image files whose identifier matched no student.",
		}, []string{"mode"}),
		photoErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_errors_total",
			Help:      "Per-file failures while reconciling photos.",
		}, []string{"mode"}),
		failedFlushes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_failed_flushes_total",
			Help:      "Directory scan batches that failed to commit.",
		}),
		flushLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_flush_seconds",
			Help:      "Latency of one bulk photo path update.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		activeScans: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_jobs_active",
			Help:      "Directory scans currently running.",
		}),
	}
}

// Photo reconciliation modes used as label values.
const (
	ModeArchive = "archive"
	ModeScan    = "scan"
)

// ObserveStage records the outcome of one import stage.
func (m *Metrics) ObserveStage(stage string, imported, skipped int, failed bool) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues(stage).Add(float64(imported))
	m.skippedRows.WithLabelValues(stage).Add(float64(skipped))
	if failed {
		m.stageFailed.WithLabelValues(stage).Inc()
	}
}

// ObservePhotos adds reconciliation counts for one mode.
func (m *Metrics) ObservePhotos(mode string, found, matched, missing, errs int) {
	if m == nil {
		return
	}
	m.photosFound.WithLabelValues(mode).Add(float64(found))
	m.photosMatched.WithLabelValues(mode).Add(float64(matched))
	m.photosMissing.WithLabelValues(mode).Add(float64(missing))
	m.photoErrors.WithLabelValues(mode).Add(float64(errs))
}

// ObserveFlush records one scan batch flush.
func (m *Metrics) ObserveFlush(seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.flushLatency.Observe(seconds)
	if failed {
		m.failedFlushes.Inc()
	}
}

// ScanStarted and ScanFinished track running scan jobs.
func (m *Metrics) ScanStarted() {
	if m == nil {
		return
	}
	m.activeScans.Inc()
}

func (m *Metrics) ScanFinished() {
	if m == nil {
		return
	}
	m.activeScans.Dec()
}
