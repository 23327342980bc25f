package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func TestGuardClassifiesOutcomes(t *testing.T) {
	guard := NewTimeoutGuard(0, testLogger())

	tests := []struct {
		name       string
		action     types.Action
		wantStatus types.TestStatus
		wantErr    bool
	}{
		{
			name:       "pass",
			action:     func(ctx context.Context) error { return nil },
			wantStatus: types.TestStatusPass,
		},
		{
			name: "assertion failure",
			action: func(ctx context.Context) error {
				return types.NewAssertionError("want 1, got 2")
			},
			wantStatus: types.TestStatusFail,
			wantErr:    true,
		},
		{
			name: "unexpected error",
			action: func(ctx context.Context) error {
				return errors.New("connection refused")
			},
			wantStatus: types.TestStatusError,
			wantErr:    true,
		},
		{
			name: "skip",
			action: func(ctx context.Context) error {
				return types.Skip("feature disabled")
			},
			wantStatus: types.TestStatusSkip,
		},
		{
			name: "panic",
			action: func(ctx context.Context) error {
				panic("boom")
			},
			wantStatus: types.TestStatusError,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := guard.Run(context.Background(), types.TestDescriptor{
				ID:     "pkg::" + tt.name,
				Action: tt.action,
			})
			require.NotNil(t, outcome)
			assert.Equal(t, tt.wantStatus, outcome.Status)
			if tt.wantErr {
				assert.Error(t, outcome.Err)
			} else {
				assert.NoError(t, outcome.Err)
			}
			assert.False(t, outcome.End.Before(outcome.Start))
		})
	}
}

func TestGuardTimeout(t *testing.T) {
	guard := NewTimeoutGuard(0, testLogger())

	start := time.Now()
	outcome := guard.Run(context.Background(), types.TestDescriptor{
		ID:      "pkg::TestSlow",
		Timeout: 10 * time.Millisecond,
		Action: func(ctx context.Context) error {
			select {
			case <-time.After(50 * time.Millisecond):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	assert.Equal(t, types.TestStatusTimeout, outcome.Status)
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)
	// The guard must report promptly, not wait out the full action.
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestGuardDefaultTimeoutApplies(t *testing.T) {
	guard := NewTimeoutGuard(10*time.Millisecond, testLogger())

	outcome := guard.Run(context.Background(), types.TestDescriptor{
		ID: "pkg::TestSlowDefault",
		Action: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	assert.Equal(t, types.TestStatusTimeout, outcome.Status)
}

func TestGuardDescriptorTimeoutOverridesDefault(t *testing.T) {
	// Descriptor allows 100ms even though the default is a tight 5ms.
	guard := NewTimeoutGuard(5*time.Millisecond, testLogger())

	outcome := guard.Run(context.Background(), types.TestDescriptor{
		ID:      "pkg::TestOverride",
		Timeout: 100 * time.Millisecond,
		Action: func(ctx context.Context) error {
			select {
			case <-time.After(20 * time.Millisecond):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	assert.Equal(t, types.TestStatusPass, outcome.Status)
}

func TestGuardNoTimeoutRunsToCompletion(t *testing.T) {
	guard := NewTimeoutGuard(0, testLogger())

	outcome := guard.Run(context.Background(), types.TestDescriptor{
		ID: "pkg::TestNoDeadline",
		Action: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); ok {
				return errors.New("unexpected deadline")
			}
			time.Sleep(20 * time.Millisecond)
			return nil
		},
	})
	assert.Equal(t, types.TestStatusPass, outcome.Status)
	assert.GreaterOrEqual(t, outcome.Duration, 20*time.Millisecond)
}

func TestGuardRunContextCancellation(t *testing.T) {
	guard := NewTimeoutGuard(0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	outcome := guard.Run(ctx, types.TestDescriptor{
		ID: "pkg::TestCancelled",
		Action: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	// Run-wide cancellation is not a per-test timeout.
	assert.Equal(t, types.TestStatusError, outcome.Status)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}
