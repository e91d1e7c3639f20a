// Package respool provides error definitions for the resource pool
package respool

import "errors"

var (
	// ErrExhausted means no resource became available within the
	// acquire timeout
	ErrExhausted = errors.New("resource pool exhausted")

	// ErrClosed means the pool has been shut down
	ErrClosed = errors.New("resource pool is closed")

	// ErrNilFactory means the pool was constructed without a factory
	ErrNilFactory = errors.New("resource factory is nil")

	// ErrNilOperation means ExecuteAsync was given a nil operation
	ErrNilOperation = errors.New("operation is nil")
)
