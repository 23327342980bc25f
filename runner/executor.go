package runner

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel/trace"
)

var _ GroupExecutor = (*groupExecutor)(nil)

// GroupExecutor runs all members of one group to completion concurrently.
// It is a "wait for all, fail none early" join: every member is started as
// its own unit of work before any completion is awaited, no member's failure
// cancels a sibling, and control only returns once every member has reached
// a terminal outcome.
type GroupExecutor interface {
	// ExecuteGroup runs the group's members and returns their outcomes in
	// completion order. Outcomes are also streamed to the collector as
	// each member finishes, so partial progress is observable before the
	// group as a whole ends.
	ExecuteGroup(ctx context.Context, group types.Group) []*types.Outcome
}

// groupExecutor implements GroupExecutor
type groupExecutor struct {
	guard     TimeoutGuard
	collector ResultCollector
	ui        ProgressIndicator
	log       log.Logger
	tracer    trace.Tracer
}

// NewGroupExecutor creates a new group executor with validation
func NewGroupExecutor(guard TimeoutGuard, collector ResultCollector, ui ProgressIndicator,
	logger log.Logger, tracer trace.Tracer) GroupExecutor {
	if guard == nil {
		panic("guard cannot be nil")
	}
	if collector == nil {
		panic("collector cannot be nil")
	}
	if ui == nil {
		ui = NewNoOpProgressIndicator()
	}
	if logger == nil {
		logger = log.Root()
	}

	return &groupExecutor{
		guard:     guard,
		collector: collector,
		ui:        ui,
		log:       logger.New("component", "group-executor"),
		tracer:    tracer,
	}
}

// ExecuteGroup starts one goroutine per member, then blocks until all of them
// have finished. Starting everything before joining anything means no member
// waits behind another's setup; completion order across members is
// unspecified.
func (e *groupExecutor) ExecuteGroup(ctx context.Context, group types.Group) []*types.Outcome {
	start := time.Now()
	e.log.Debug("Executing group", "group", group.Key, "members", len(group.Members))

	groupCtx := ctx
	if e.tracer != nil {
		var span trace.Span
		groupCtx, span = e.tracer.Start(ctx, "group "+group.Key)
		defer span.End()
	}

	e.ui.StartGroup(group.Key, len(group.Members))

	outcomeChan := make(chan *types.Outcome, len(group.Members))
	var wg sync.WaitGroup
	for _, member := range group.Members {
		wg.Add(1)
		go func(d types.TestDescriptor) {
			defer wg.Done()

			testCtx := groupCtx
			if e.tracer != nil {
				var span trace.Span
				testCtx, span = e.tracer.Start(groupCtx, d.ID)
				defer span.End()
			}

			e.ui.StartTest(d.ID)
			outcome := e.guard.Run(testCtx, d)

			// Stream the outcome out as soon as it exists.
			e.collector.Record(outcome)
			e.ui.UpdateTest(d.ID, outcome.Status)
			outcomeChan <- outcome
		}(member)
	}

	go func() {
		wg.Wait()
		close(outcomeChan)
	}()

	outcomes := make([]*types.Outcome, 0, len(group.Members))
	for outcome := range outcomeChan {
		outcomes = append(outcomes, outcome)
	}

	e.ui.CompleteGroup(group.Key)
	e.log.Debug("Group complete", "group", group.Key, "members", len(group.Members),
		"duration", time.Since(start))

	return outcomes
}
