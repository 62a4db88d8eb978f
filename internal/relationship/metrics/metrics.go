package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the relationship module.
type Metrics struct {
	Created          prometheus.Counter
	Updated          prometheus.Counter
	Deleted          prometheus.Counter
	Rejected         *prometheus.CounterVec
	ValidateDuration prometheus.Histogram
}

// New creates a new Metrics instance with all relationship metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lineage_relationships_created_total",
			Help: "Total number of relationships created",
		}),
		Updated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lineage_relationships_updated_total",
			Help: "Total number of relationships updated",
		}),
		Deleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lineage_relationships_deleted_total",
			Help: "Total number of relationships deleted",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_relationship_rejections_total",
			Help: "Relationship writes rejected by the validator, by reason code",
		}, []string{"code"}),
		ValidateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineage_relationship_validate_duration_seconds",
			Help:    "Duration of the relationship validation pipeline",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCreated() { m.Created.Inc() }
func (m *Metrics) IncrementUpdated() { m.Updated.Inc() }
func (m *Metrics) IncrementDeleted() { m.Deleted.Inc() }

func (m *Metrics) IncrementRejected(code string) {
	m.Rejected.WithLabelValues(code).Inc()
}

// ObserveValidate records the duration of one validation pipeline run.
// Call with time.Now() at the start of the pipeline.
func (m *Metrics) ObserveValidate(start time.Time) {
	m.ValidateDuration.Observe(time.Since(start).Seconds())
}
