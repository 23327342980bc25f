package types

// TestStatus represents the possible terminal states of a test execution
type TestStatus string

const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusError   TestStatus = "error"
	TestStatusTimeout TestStatus = "timeout"
	TestStatusSkip    TestStatus = "skip"
)

// IsFailure reports whether the status counts against the run: an assertion
// failure, an unexpected error, or an exceeded deadline.
func (s TestStatus) IsFailure() bool {
	return s == TestStatusFail || s == TestStatusError || s == TestStatusTimeout
}
