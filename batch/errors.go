// Package batch provides error definitions for the batch aggregator
package batch

import "errors"

var (
	// ErrClosed means the aggregator no longer accepts items
	ErrClosed = errors.New("batch aggregator is shut down")

	// ErrNilProcess means the aggregator was constructed without a
	// process callback
	ErrNilProcess = errors.New("process function is nil")
)
