package metrics

import (
	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the ledger engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	commits         *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	cycleRejections prometheus.Counter
	blobDedupHits   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "commits_total",
			Help:      "Committed revisions by entity kind",
		}, []string{"entity"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "conflicts_total",
			Help:      "Stage attempts rejected because the base version was stale",
		}, []string{"entity"}),
		cycleRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "cyclic_dependency_rejections_total",
			Help:      "Clearing account changes rejected for introducing a cycle",
		}),
		blobDedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "blob_dedup_hits_total",
			Help:      "Uploads whose content was already stored",
		}),
	}
	reg.MustRegister(m.commits, m.conflicts, m.cycleRejections, m.blobDedupHits)
	return m
}

func (m *Metrics) CommitRecorded(kind domain.EntityKind) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ConflictRecorded(kind domain.EntityKind) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) CycleRejected() {
	if m == nil {
		return
	}
	m.cycleRejections.Inc()
}

func (m *Metrics) BlobDedupHit() {
	if m == nil {
		return
	}
	m.blobDedupHits.Inc()
}
