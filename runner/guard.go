package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/ethereum/go-ethereum/log"
)

var _ TimeoutGuard = (*timeoutGuard)(nil)

// TimeoutGuard executes a single test's action and enforces its optional
// deadline. A guard isolates everything that can go wrong inside one action -
// returned errors, panics, exceeded deadlines - and converts it into that
// test's outcome without disturbing any sibling.
type TimeoutGuard interface {
	// Run executes the descriptor's action to a terminal outcome. The
	// returned outcome is never nil.
	Run(ctx context.Context, d types.TestDescriptor) *types.Outcome
}

// timeoutGuard implements TimeoutGuard
type timeoutGuard struct {
	defaultTimeout time.Duration
	log            log.Logger
}

// NewTimeoutGuard creates a guard applying defaultTimeout to descriptors that
// carry no timeout of their own. A zero defaultTimeout disables the deadline
// entirely for such descriptors.
func NewTimeoutGuard(defaultTimeout time.Duration, logger log.Logger) TimeoutGuard {
	if logger == nil {
		logger = log.Root()
	}
	return &timeoutGuard{
		defaultTimeout: defaultTimeout,
		log:            logger.New("component", "timeout-guard"),
	}
}

// effectiveTimeout resolves the deadline for one descriptor. The descriptor's
// own timeout wins over the configured default.
func (g *timeoutGuard) effectiveTimeout(d types.TestDescriptor) time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return g.defaultTimeout
}

// Run executes the action, racing it against the effective deadline when one
// is set. Cancellation is cooperative: on expiry the action's context is
// cancelled and the outcome is recorded as timed out immediately, while the
// action itself is left to observe ctx.Done() and unwind. An action that
// never checks its context keeps its goroutine alive until it returns on its
// own; that is the test author's responsibility.
func (g *timeoutGuard) Run(ctx context.Context, d types.TestDescriptor) *types.Outcome {
	outcome := types.NewOutcome(d)

	timeout := g.effectiveTimeout(d)
	actionCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		actionCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				g.log.Error("Panic in test action", "test", d.ID, "panic", r, "stack", string(debug.Stack()))
				done <- fmt.Errorf("panic in test action: %v", r)
			}
		}()
		done <- d.Action(actionCtx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) && actionCtx.Err() != nil && ctx.Err() == nil {
			// The per-test timer expired and the action surfaced it
			// before our own select noticed.
			return outcome.Finish(types.TestStatusTimeout,
				fmt.Errorf("test exceeded timeout of %v: %w", timeout, context.DeadlineExceeded))
		}
		status := types.ClassifyActionError(err)
		if status == types.TestStatusSkip {
			// A skip reason is informational, not a failure detail.
			err = nil
		}
		return outcome.Finish(status, err)
	case <-actionCtx.Done():
		if ctx.Err() != nil {
			// The run-wide context was cancelled, not this test's timer.
			return outcome.Finish(types.TestStatusError, ctx.Err())
		}
		g.log.Warn("Test exceeded its deadline", "test", d.ID, "timeout", timeout)
		return outcome.Finish(types.TestStatusTimeout,
			fmt.Errorf("test exceeded timeout of %v: %w", timeout, context.DeadlineExceeded))
	}
}
