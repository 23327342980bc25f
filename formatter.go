package grouprunner

import (
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-grouprunner/runner"
	"github.com/ethereum-optimism/infra/op-grouprunner/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(result *runner.RunnerResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	if logger == nil {
		logger = log.Root()
	}
	return &ConsoleResultFormatter{
		logger: logger,
	}
}

// FormatResults renders the run as a table, one row per test, grouped by the
// effective group key in execution order.
func (f *ConsoleResultFormatter) FormatResults(result *runner.RunnerResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Async Group Test Results (%s)", result.WallClockTime.Round(timeRounding)))

	t.AppendHeader(table.Row{
		"Group", "Test", "Duration", "Status", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Group", AutoMerge: true, WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, outcome := range sortedOutcomes(result) {
		groupLabel := outcome.Group
		if (types.Group{Key: outcome.Group}).IsAnonymous() {
			groupLabel = "(sequential)"
		}

		errText := ""
		if outcome.Err != nil {
			errText = outcome.Err.Error()
		}

		t.AppendRow(table.Row{
			groupLabel,
			outcome.TestID,
			outcome.Duration.Round(timeRounding),
			getResultString(outcome.Status),
			errText,
		})
	}

	switch result.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d tests", result.Stats.Total),
		result.WallClockTime.Round(timeRounding),
		getResultString(result.Status),
		fmt.Sprintf("%d passed, %d failed, %d errored, %d timed out, %d skipped",
			result.Stats.Passed, result.Stats.Failed, result.Stats.Errored,
			result.Stats.TimedOut, result.Stats.Skipped),
	})

	t.Render()
	return nil
}

// sortedOutcomes orders the outcome map by start time, breaking ties by test
// ID so rendering is deterministic.
func sortedOutcomes(result *runner.RunnerResult) []*types.Outcome {
	outcomes := make([]*types.Outcome, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Start.Equal(outcomes[j].Start) {
			return outcomes[i].TestID < outcomes[j].TestID
		}
		return outcomes[i].Start.Before(outcomes[j].Start)
	})
	return outcomes
}
