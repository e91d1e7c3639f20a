package batch

import "time"

// ProcessFunc handles one flushed batch on a background worker. A
// returned error is logged and swallowed; callers needing guaranteed
// delivery must retry inside the callback.
type ProcessFunc func(items []interface{}) error

// Options contains configuration options for creating an Aggregator.
type Options struct {
	// BatchSize is the buffer size that triggers a flush
	BatchSize int

	// FlushInterval is the maximum time between flush initiations
	// while the buffer is non-empty
	FlushInterval time.Duration
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		BatchSize:     100,
		FlushInterval: time.Second,
	}
}

// State represents the aggregator's flush state.
type State uint8

const (
	// StateIdle means no flush is in flight
	StateIdle State = iota

	// StateFlushing means exactly one flush is in flight
	StateFlushing
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Stats contains runtime statistics for an Aggregator.
type Stats struct {
	// Items currently buffered and awaiting flush
	BufferSize int

	// Configured flush threshold
	BatchSize int

	// Flushes initiated
	TotalBatches uint64

	// Sum of all flushed batch sizes
	TotalItems uint64

	// Whether a flush is currently in flight
	InFlight bool
}
