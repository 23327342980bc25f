// Package grouprunner executes independently-defined asynchronous test cases
// with group-scoped concurrency: tests tagged with the same group key run
// concurrently with each other, while ungrouped tests keep conventional
// sequential execution, one group at a time.
//
// This package is the service facade: configuration, metrics reporting, and
// console summary output around the execution core in the runner package.
// Test discovery and annotation parsing are a caller concern, supplied
// through a DescriptorProvider.
//
// Known limitation: the runner guarantees isolation only for test-scoped
// state. Any resource whose lifetime spans more than one test is a hazard
// when members of the same group access it concurrently; the runner provides
// no locking or mutual exclusion for such resources.
package grouprunner
