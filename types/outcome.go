package types

import "time"

// Outcome captures the terminal result of a single test execution
type Outcome struct {
	TestID   string
	Group    string // effective group key the test ran under
	Status   TestStatus
	Err      error         // failure detail, nil for pass and skip
	Start    time.Time     // when the action was handed to its unit of work
	End      time.Time     // when the outcome became terminal
	Duration time.Duration // End.Sub(Start), kept explicit for aggregation
}

// NewOutcome returns an outcome for the descriptor with timing left open.
func NewOutcome(d TestDescriptor) *Outcome {
	return &Outcome{
		TestID: d.ID,
		Group:  d.EffectiveKey(),
		Start:  time.Now(),
	}
}

// Finish stamps the end time and records the terminal status and error.
func (o *Outcome) Finish(status TestStatus, err error) *Outcome {
	o.End = time.Now()
	o.Duration = o.End.Sub(o.Start)
	o.Status = status
	o.Err = err
	return o
}
