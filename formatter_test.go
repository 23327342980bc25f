package grouprunner

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/runner"
	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runForFormatting(t *testing.T) *runner.RunnerResult {
	t.Helper()
	r, err := runner.NewTestRunner(runner.Config{Log: discardLogger(), Strict: true})
	require.NoError(t, err)

	result, err := r.Run(context.Background(), []types.TestDescriptor{
		{ID: "pkg::TestA", Action: func(ctx context.Context) error { return nil }},
		{ID: "pkg::TestB", Group: "g1", Action: func(ctx context.Context) error { return nil }},
		{ID: "pkg::TestC", Group: "g1", Action: func(ctx context.Context) error {
			return types.NewAssertionError("mismatch")
		}},
	})
	require.NoError(t, err)
	return result
}

func TestFormatResults(t *testing.T) {
	formatter := NewConsoleResultFormatter(discardLogger())

	assert.Error(t, formatter.FormatResults(nil))
	assert.NoError(t, formatter.FormatResults(runForFormatting(t)))
}

func TestSortedOutcomesDeterministic(t *testing.T) {
	now := time.Now()
	result := &runner.RunnerResult{
		Outcomes: map[string]*types.Outcome{
			"b": {TestID: "b", Start: now},
			"a": {TestID: "a", Start: now},
			"c": {TestID: "c", Start: now.Add(-time.Second)},
		},
	}

	outcomes := sortedOutcomes(result)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "c", outcomes[0].TestID)
	assert.Equal(t, "a", outcomes[1].TestID)
	assert.Equal(t, "b", outcomes[2].TestID)
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "✓ pass", getResultString(types.TestStatusPass))
	assert.Equal(t, "- skip", getResultString(types.TestStatusSkip))
	assert.Equal(t, "✗ timeout", getResultString(types.TestStatusTimeout))
	assert.Equal(t, "✗ error", getResultString(types.TestStatusError))
	assert.Equal(t, "✗ fail", getResultString(types.TestStatusFail))
}
