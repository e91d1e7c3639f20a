// Package tracker provides error definitions for operation tracking
package tracker

import "errors"

var (
	// ErrDuplicateID means the id is already in use by a pending operation
	ErrDuplicateID = errors.New("operation id already pending")

	// ErrClosed means the tracker no longer accepts submissions
	ErrClosed = errors.New("tracker is shut down")
)
