package runner

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
)

// CollectionError reports malformed runner input detected before any test
// executes: a duplicate descriptor ID, a nil action, or a reserved group key.
// In strict mode it is fatal to the whole run.
type CollectionError struct {
	TestID string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection error for %q: %v", e.TestID, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *CollectionError) Unwrap() error {
	return e.Err
}

// NewCollectionError creates a new CollectionError
func NewCollectionError(testID string, err error) *CollectionError {
	return &CollectionError{TestID: testID, Err: err}
}

// IsCollectionError checks if the error is or wraps a CollectionError
func IsCollectionError(err error) bool {
	var collErr *CollectionError
	return err != nil && errors.As(err, &collErr)
}

// Aggregation is the output of partitioning a descriptor sequence.
type Aggregation struct {
	// Groups holds the execution groups in first-seen key order.
	Groups []types.Group
	// Dropped holds descriptors demoted to skip outcomes in lenient mode,
	// e.g. later duplicates of an already-seen ID. Always empty in strict
	// mode, where the same conditions abort the run instead.
	Dropped []types.TestDescriptor
}

// AggregateGroups partitions descriptors into execution groups. Group order
// follows the first occurrence of each effective key and member order within
// a group follows descriptor order, so a run replays discovery order exactly.
// Descriptors without an explicit group each receive a private anonymous key
// and become singleton groups.
//
// With strict set, any malformed descriptor or duplicate ID returns a
// CollectionError and no groups. Otherwise offending descriptors are moved to
// Dropped and the rest of the sequence still executes.
//
// AggregateGroups is a pure function of its input; it never mutates the
// descriptor slice.
func AggregateGroups(descriptors []types.TestDescriptor, strict bool) (*Aggregation, error) {
	agg := &Aggregation{}
	seen := make(map[string]struct{}, len(descriptors))
	groupIndex := make(map[string]int)

	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			if strict {
				return nil, NewCollectionError(d.ID, err)
			}
			agg.Dropped = append(agg.Dropped, d)
			continue
		}
		if _, dup := seen[d.ID]; dup {
			if strict {
				return nil, NewCollectionError(d.ID, fmt.Errorf("duplicate test ID"))
			}
			agg.Dropped = append(agg.Dropped, d)
			continue
		}
		seen[d.ID] = struct{}{}

		key := d.EffectiveKey()
		idx, ok := groupIndex[key]
		if !ok {
			idx = len(agg.Groups)
			groupIndex[key] = idx
			agg.Groups = append(agg.Groups, types.Group{Key: key})
		}
		agg.Groups[idx].Members = append(agg.Groups[idx].Members, d)
	}

	return agg, nil
}
