// Package metrics exposes Prometheus instrumentation for the person module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the person module.
type Metrics struct {
	Created  prometheus.Counter
	Updated  prometheus.Counter
	Deleted  prometheus.Counter
	Rejected *prometheus.CounterVec
}

// New creates a new Metrics instance with all person metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lineage_persons_created_total",
			Help: "Total number of person records created",
		}),
		Updated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lineage_persons_updated_total",
			Help: "Total number of person records updated",
		}),
		Deleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lineage_persons_deleted_total",
			Help: "Total number of person records deleted",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_person_rejections_total",
			Help: "Person writes rejected by validation, by reason code",
		}, []string{"code"}),
	}
}

func (m *Metrics) IncrementCreated() { m.Created.Inc() }
func (m *Metrics) IncrementUpdated() { m.Updated.Inc() }
func (m *Metrics) IncrementDeleted() { m.Deleted.Inc() }

func (m *Metrics) IncrementRejected(code string) {
	m.Rejected.WithLabelValues(code).Inc()
}
