package grouprunner

import (
	"github.com/ethereum-optimism/infra/op-grouprunner/metrics"
	"github.com/ethereum-optimism/infra/op-grouprunner/runner"
)

// MetricsReporter is responsible for reporting metrics from run results.
type MetricsReporter interface {
	ReportResults(runID string, result *runner.RunnerResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the run results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(runID string, result *runner.RunnerResult) {
	if result == nil {
		return
	}

	for _, outcome := range result.Outcomes {
		metrics.RecordOutcome(runID, outcome)
	}

	metrics.RecordRun(
		runID,
		string(result.Status),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed+result.Stats.Errored+result.Stats.TimedOut,
		result.WallClockTime,
	)
}
