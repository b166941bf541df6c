package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ingestMetrics tracks ingestion volume.
type ingestMetrics struct {
	coursesTotal prometheus.Counter
	chunksTotal  prometheus.Counter
}

func newIngestMetrics(reg prometheus.Registerer) *ingestMetrics {
	factory := promauto.With(reg)
	return &ingestMetrics{
		coursesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lectern",
			Subsystem: "ingest",
			Name:      "courses_total",
			Help:      "Courses added to the index.",
		}),
		chunksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lectern",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Content chunks added to the index.",
		}),
	}
}
