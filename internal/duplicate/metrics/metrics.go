// Package metrics exposes Prometheus instrumentation for duplicate scans.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the duplicate module.
type Metrics struct {
	Scans        *prometheus.CounterVec
	Rejected     *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	Candidates   prometheus.Histogram
}

// New creates a new Metrics instance with all duplicate-scan metrics registered.
func New() *Metrics {
	return &Metrics{
		Scans: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_duplicate_scans_total",
			Help: "Completed duplicate scans, by result source (computed or cache)",
		}, []string{"source"}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_duplicate_scans_rejected_total",
			Help: "Duplicate scans rejected at parameter validation, by error code",
		}, []string{"code"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_duplicate_scan_duration_seconds",
			Help:    "Duration of computed duplicate scans",
			Buckets: prometheus.DefBuckets,
		}),
		Candidates: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_duplicate_candidates_per_scan",
			Help:    "Candidate pairs reported per computed scan",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}
}

// IncrementScan records a completed scan. Source is "computed" when the
// pairwise comparison ran and "cache" when results were served cached.
func (m *Metrics) IncrementScan(source string) {
	m.Scans.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementRejected(code string) {
	m.Rejected.WithLabelValues(code).Inc()
}

// ObserveScan records the duration of one computed scan. Call with
// time.Now() captured before the comparison started.
func (m *Metrics) ObserveScan(start time.Time, candidates int) {
	m.ScanDuration.Observe(time.Since(start).Seconds())
	m.Candidates.Observe(float64(candidates))
}
