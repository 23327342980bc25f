package types

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AnonymousKeyPrefix marks synthetic group keys assigned to descriptors that
// declare no group of their own. Explicit group names must not use it.
const AnonymousKeyPrefix = "anonymous_["

// Action is the asynchronous body of a single test. It reports its result
// through the returned error: nil for a pass, an AssertionError (or a wrap of
// one) for a failed check, ErrSkipped for a skip, and any other error for an
// unexpected runtime failure. Long waits inside an action must select on
// ctx.Done() so that a per-test deadline can cancel the action cooperatively.
type Action func(ctx context.Context) error

// TestDescriptor describes one test to execute. Descriptors are produced by
// an external collection step before a run begins and are read-only
// thereafter.
type TestDescriptor struct {
	// ID uniquely identifies the test across the whole run,
	// e.g. a fully qualified test name.
	ID string
	// Action is invoked exactly once per run.
	Action Action
	// Group names the async group this test belongs to. Tests sharing a
	// group run concurrently with each other. Empty means ungrouped: the
	// test is placed in a private singleton group and runs sequentially
	// relative to everything else.
	Group string
	// Timeout bounds the action's execution. Zero means no per-test
	// deadline beyond the runner's configured default.
	Timeout time.Duration
}

// Validate checks that the descriptor is well-formed enough to execute.
func (d TestDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("descriptor has empty ID")
	}
	if d.Action == nil {
		return fmt.Errorf("descriptor %q has nil action", d.ID)
	}
	if strings.HasPrefix(d.Group, AnonymousKeyPrefix) {
		return fmt.Errorf("descriptor %q uses reserved group key %q", d.ID, d.Group)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("descriptor %q has negative timeout %v", d.ID, d.Timeout)
	}
	return nil
}

// AnonymousKey returns the synthetic singleton group key for the descriptor.
// The key is derived from the descriptor's ID, so it is unique whenever IDs
// are unique and stable across re-runs of the same descriptor sequence.
func (d TestDescriptor) AnonymousKey() string {
	return fmt.Sprintf("%s%s]", AnonymousKeyPrefix, d.ID)
}

// EffectiveKey returns the group key execution uses: the declared group, or
// the descriptor's private anonymous key when no group was declared.
func (d TestDescriptor) EffectiveKey() string {
	if d.Group == "" {
		return d.AnonymousKey()
	}
	return d.Group
}

// Group is an ordered set of tests that may run concurrently with each other.
// A Group is immutable once the aggregator emits it.
type Group struct {
	// Key is the effective group identity.
	Key string
	// Members holds the group's descriptors in discovery order.
	Members []TestDescriptor
}

// IsSingleton reports whether the group holds exactly one test. Ungrouped
// descriptors always land in singleton groups with anonymous keys.
func (g Group) IsSingleton() bool {
	return len(g.Members) == 1
}

// IsAnonymous reports whether the group key was synthesized for an ungrouped
// descriptor.
func (g Group) IsAnonymous() bool {
	return strings.HasPrefix(g.Key, AnonymousKeyPrefix)
}
