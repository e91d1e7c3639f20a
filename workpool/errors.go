// Package workpool provides error definitions for the worker pool
package workpool

import "errors"

// Submission and lifecycle errors
var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrNilWork    = errors.New("work function is nil")
)

// Handle consumption errors
var (
	ErrNotDone  = errors.New("operation has not completed yet")
	ErrConsumed = errors.New("operation result already consumed")
)
