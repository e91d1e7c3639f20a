package respool

import "time"

// Factory creates one pooled resource, e.g. a database connection.
type Factory func() (interface{}, error)

// Operation is a closure executed against a borrowed resource on a
// background worker.
type Operation func(resource interface{}) (interface{}, error)

// Options contains configuration options for creating a Pool.
type Options struct {
	// MaxConnections is the number of resources created at construction
	MaxConnections int

	// AcquireTimeout bounds how long an operation waits for a free
	// resource inside its worker
	AcquireTimeout time.Duration

	// MaxWorkers sets the worker pool size; 0 means MaxConnections
	MaxWorkers int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		MaxConnections: 10,
		AcquireTimeout: 5 * time.Second,
	}
}

// Stats contains runtime statistics for a Pool.
type Stats struct {
	// Resources currently sitting in the pool
	Available int

	// Resources the pool was asked to create
	MaxConnections int

	// Resources actually created; less than MaxConnections when the
	// factory failed during construction
	Size int

	// Operations that completed successfully
	TotalOperations uint64

	// Operations that failed, including exhaustion timeouts
	FailedOperations uint64
}

// CheckedOut returns how many resources are currently borrowed by
// in-flight operations.
func (s Stats) CheckedOut() int {
	return s.Size - s.Available
}
