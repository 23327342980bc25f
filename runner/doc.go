// Package runner provides components for executing asynchronous test cases
// with group-scoped concurrency.
//
// The main components are:
//   - AggregateGroups: partitions an ordered descriptor sequence into execution
//     groups, giving every ungrouped test a private singleton group
//   - GroupExecutor: runs all members of one group concurrently and streams an
//     outcome per member as it finishes
//   - TimeoutGuard: races a single test's action against its optional deadline
//   - ResultCollector: accumulates outcomes and exposes them for live observation
//   - TestRunner: sequences groups one at a time, in discovery order
//
// Groups never overlap with each other: ungrouped tests therefore keep the
// conventional one-at-a-time execution order, while tests sharing a group key
// run concurrently within their group's execution window. The runner provides
// no mutual exclusion for state shared across tests of the same group; only
// test-scoped state is isolated. Full cross-group concurrency is deliberately
// not implemented.
package runner
