package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ResultStats tracks aggregate outcome counts for a run
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	Errored   int
	TimedOut  int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// RunnerResult captures the complete results of one run
type RunnerResult struct {
	RunID    string
	Outcomes map[string]*types.Outcome
	Status   types.TestStatus
	Stats    ResultStats
	// Duration is the sum of individual test durations; WallClockTime is
	// elapsed real time. With concurrent groups Duration exceeds
	// WallClockTime, which is the point.
	Duration      time.Duration
	WallClockTime time.Duration
}

// String returns a one-line summary suitable for logs and errors.
func (r *RunnerResult) String() string {
	return fmt.Sprintf("run %s: %s (%d tests: %d passed, %d failed, %d errored, %d timed out, %d skipped) in %v",
		r.RunID, r.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed,
		r.Stats.Errored, r.Stats.TimedOut, r.Stats.Skipped, r.WallClockTime)
}

// TestRunner defines the interface for running a collection of test
// descriptors. A runner value is single-use: its collector stream closes when
// Run returns, so create a fresh runner per run and subscribe before calling
// Run.
type TestRunner interface {
	// Run aggregates the descriptors into groups, executes the groups one
	// at a time in discovery order, and returns one outcome per
	// descriptor. The only error it returns is a CollectionError raised
	// before any test executed (strict mode); execution failures live in
	// the outcomes, never in the returned error.
	Run(ctx context.Context, descriptors []types.TestDescriptor) (*RunnerResult, error)

	// Collector exposes the runner's result collector so callers can
	// subscribe to the outcome stream before starting a run.
	Collector() ResultCollector
}

// Config holds configuration for creating a new runner
type Config struct {
	Log log.Logger
	// DefaultTimeout applies to descriptors that carry no timeout of
	// their own. Zero disables the default deadline.
	DefaultTimeout time.Duration
	// Strict aborts the run on collection errors such as duplicate test
	// IDs. When false, malformed descriptors are skipped and the rest of
	// the sequence still executes.
	Strict bool
	// UI receives progress notifications. Nil means no progress output.
	UI ProgressIndicator
}

// runner struct implements TestRunner interface
type runner struct {
	log       log.Logger
	strict    bool
	ran       atomic.Bool
	guard     TimeoutGuard
	collector ResultCollector
	executor  GroupExecutor
	ui        ProgressIndicator
	tracer    trace.Tracer
}

// NewTestRunner creates a new test runner instance
func NewTestRunner(cfg Config) (TestRunner, error) {
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	logger = logger.New("component", "runner")

	if cfg.DefaultTimeout < 0 {
		return nil, fmt.Errorf("default timeout cannot be negative: %v", cfg.DefaultTimeout)
	}

	ui := cfg.UI
	if ui == nil {
		ui = NewNoOpProgressIndicator()
	}

	tracer := otel.Tracer("op-grouprunner")
	guard := NewTimeoutGuard(cfg.DefaultTimeout, logger)
	collector := NewResultCollector(logger)

	return &runner{
		log:       logger,
		strict:    cfg.Strict,
		guard:     guard,
		collector: collector,
		executor:  NewGroupExecutor(guard, collector, ui, logger, tracer),
		ui:        ui,
		tracer:    tracer,
	}, nil
}

// Collector implements the TestRunner interface
func (r *runner) Collector() ResultCollector {
	return r.collector
}

// Run implements the TestRunner interface
func (r *runner) Run(ctx context.Context, descriptors []types.TestDescriptor) (*RunnerResult, error) {
	if !r.ran.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("runner already used; create a new runner per run")
	}

	runID := uuid.New().String()
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "run "+runID)
	defer span.End()

	agg, err := AggregateGroups(descriptors, r.strict)
	if err != nil {
		r.log.Error("Collection failed, aborting run before execution", "runID", runID, "error", err)
		return nil, err
	}

	r.log.Info("Starting run", "runID", runID,
		"tests", len(descriptors), "groups", len(agg.Groups), "dropped", len(agg.Dropped))

	r.recordDropped(agg)

	// Sequencing: one group at a time, in discovery order. A group's
	// member failures never stop the loop.
	for _, group := range agg.Groups {
		r.executor.ExecuteGroup(ctx, group)
	}

	r.collector.Close()

	result := r.finalizeResult(runID, start)
	r.log.Info("Run complete", "runID", runID, "status", result.Status,
		"total", result.Stats.Total, "passed", result.Stats.Passed,
		"failed", result.Stats.Failed, "errored", result.Stats.Errored,
		"timedOut", result.Stats.TimedOut, "skipped", result.Stats.Skipped,
		"wallClock", result.WallClockTime)
	return result, nil
}

// recordDropped emits skip outcomes for descriptors demoted during lenient
// aggregation. A dropped duplicate shares its ID with a descriptor that still
// executes, so it is only logged; recording it would collide with the real
// outcome.
func (r *runner) recordDropped(agg *Aggregation) {
	executing := make(map[string]struct{})
	for _, g := range agg.Groups {
		for _, m := range g.Members {
			executing[m.ID] = struct{}{}
		}
	}

	for _, d := range agg.Dropped {
		if _, dup := executing[d.ID]; dup || d.ID == "" {
			r.log.Warn("Dropping malformed descriptor without outcome", "test", d.ID)
			continue
		}
		r.log.Warn("Skipping malformed descriptor", "test", d.ID)
		r.collector.Record(types.NewOutcome(d).Finish(types.TestStatusSkip, nil))
	}
}

// finalizeResult rolls outcomes up into the run-level report.
func (r *runner) finalizeResult(runID string, start time.Time) *RunnerResult {
	outcomes := r.collector.Outcomes()

	result := &RunnerResult{
		RunID:    runID,
		Outcomes: outcomes,
		Stats: ResultStats{
			StartTime: start,
			EndTime:   time.Now(),
		},
	}
	result.WallClockTime = result.Stats.EndTime.Sub(start)

	for _, o := range outcomes {
		result.Stats.Total++
		result.Duration += o.Duration
		switch o.Status {
		case types.TestStatusPass:
			result.Stats.Passed++
		case types.TestStatusFail:
			result.Stats.Failed++
		case types.TestStatusError:
			result.Stats.Errored++
		case types.TestStatusTimeout:
			result.Stats.TimedOut++
		case types.TestStatusSkip:
			result.Stats.Skipped++
		}
	}

	result.Status = determineRunStatus(result.Stats)
	return result
}

// determineRunStatus returns the run-level status. Failures of any kind win
// over everything else; a run where every test skipped is itself a skip.
func determineRunStatus(stats ResultStats) types.TestStatus {
	if stats.Failed > 0 || stats.Errored > 0 || stats.TimedOut > 0 {
		return types.TestStatusFail
	}
	if stats.Total > 0 && stats.Skipped == stats.Total {
		return types.TestStatusSkip
	}
	return types.TestStatusPass
}
