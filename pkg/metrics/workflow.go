package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics records cost change workflow transitions and export runs.
type WorkflowMetrics struct {
	transitions    *prometheus.CounterVec
	exportRuns     *prometheus.CounterVec
	exportRows     prometheus.Counter
	exportDuration prometheus.Histogram
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cost_change_transitions_total",
		Help: "Cost change workflow transitions by action and outcome.",
	}, []string{"action", "outcome"})
	exportRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_runs_total",
		Help: "BRData export runs by outcome.",
	}, []string{"outcome"})
	exportRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_rows_total",
		Help: "Rows written across all BRData export runs.",
	})
	exportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "export_duration_seconds",
		Help:    "Duration of BRData export runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(transitions, exportRuns, exportRows, exportDuration)
	return &WorkflowMetrics{
		transitions:    transitions,
		exportRuns:     exportRuns,
		exportRows:     exportRows,
		exportDuration: exportDuration,
	}
}

// IncTransition increments the transition counter for the named action.
func (w *WorkflowMetrics) IncTransition(action string, err error) {
	if w == nil || w.transitions == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	w.transitions.WithLabelValues(normalizeLabel(action), outcome).Inc()
}

// ObserveExport records one export run.
func (w *WorkflowMetrics) ObserveExport(rows int, duration time.Duration, err error) {
	if w == nil || w.exportRuns == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	w.exportRuns.WithLabelValues(outcome).Inc()
	if err == nil {
		w.exportRows.Add(float64(rows))
		w.exportDuration.Observe(duration.Seconds())
	}
}

func normalizeLabel(action string) string {
	if action == "" {
		return "unknown"
	}
	return action
}
