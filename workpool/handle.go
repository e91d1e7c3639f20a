package workpool

import (
	"context"
	"sync"
	"time"
)

// Handle is an opaque reference to a unit of work running on a Pool.
// The submitter owns the Handle until the result is consumed; the pool
// owns the underlying execution until it signals completion.
//
// Completion is published by closing an internal channel, so Done
// transitions are observed by the control thread as a single
// all-or-nothing event.
type Handle struct {
	done chan struct{}

	mu       sync.Mutex
	value    interface{}
	err      error
	consumed bool

	submitted time.Time
}

func newHandle() *Handle {
	return &Handle{
		done:      make(chan struct{}),
		submitted: time.Now(),
	}
}

// complete records the outcome and marks the handle done.
// It must be called exactly once, from the worker that ran the work.
func (h *Handle) complete(value interface{}, err error) {
	h.mu.Lock()
	h.value = value
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Done reports whether the work has finished, without blocking.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Take consumes the result of the work. It returns ErrNotDone if the
// work has not finished, and ErrConsumed if the result was already
// taken. On the first call after completion it returns the work's
// value and error, never both non-zero.
func (h *Handle) Take() (interface{}, error) {
	if !h.Done() {
		return nil, ErrNotDone
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.consumed {
		return nil, ErrConsumed
	}
	h.consumed = true

	return h.value, h.err
}

// Wait blocks until the work finishes or the context is cancelled.
// It must not be called from tick code; it exists for shutdown paths
// and other non-tick contexts.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmittedAt returns the time the work was accepted by the pool.
func (h *Handle) SubmittedAt() time.Time {
	return h.submitted
}
