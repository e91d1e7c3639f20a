package tracker

import "time"

// Outcome describes one finished operation as reported by
// PollCompleted. Exactly one of Value and Err is meaningful,
// distinguished by Err being nil.
type Outcome struct {
	// ID is the application-chosen operation id
	ID string

	// Value is the work function's return value on success
	Value interface{}

	// Err is the work function's error on failure
	Err error

	// Duration between submission and the poll that observed completion
	Duration time.Duration
}

// Failed reports whether the operation ended in an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Stats contains cumulative counters for a Tracker.
type Stats struct {
	// Operations submitted but not yet reported by PollCompleted
	Pending int

	// Operations reported successful
	Completed uint64

	// Operations reported failed
	Failed uint64
}
