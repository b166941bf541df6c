package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// toolMetrics holds the Prometheus metrics owned by the registry. A fresh
// instance is created per Registry so that tests can inject an isolated
// prometheus.Registry without polluting the default one.
type toolMetrics struct {
	// executionsTotal counts tool executions, partitioned by tool name and
	// outcome: "ok", "error", or "unknown" for unregistered names.
	executionsTotal *prometheus.CounterVec

	// durationSeconds records the wall-clock duration of each tool execution.
	durationSeconds *prometheus.HistogramVec
}

// newToolMetrics registers the tool metrics against reg and returns the
// populated toolMetrics. promauto.With(reg) keeps registration scoped to the
// provided registry.
func newToolMetrics(reg prometheus.Registerer) *toolMetrics {
	factory := promauto.With(reg)

	return &toolMetrics{
		executionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lectern",
			Subsystem: "tools",
			Name:      "executions_total",
			Help:      "Total number of tool executions, partitioned by tool name and outcome.",
		}, []string{"tool", "outcome"}),

		durationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lectern",
			Subsystem: "tools",
			Name:      "execution_duration_seconds",
			Help:      "Wall-clock duration of tool executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}
