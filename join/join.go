// Package join aggregates a named set of independently submitted
// operations and reports when all, or a subset, have completed.
//
// A Set is used in rounds: a node registers a handle per operation
// name, polls for completion across ticks, collects results and
// finally calls Clear before starting the next round.
package join

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tickio/tickio/workpool"
)

var (
	// ErrDuplicateName means the name is already registered in the
	// current round
	ErrDuplicateName = errors.New("operation name already registered")

	// ErrTimeout means an operation did not finish before the
	// GetAllResults deadline
	ErrTimeout = errors.New("operation timed out")
)

// Result carries the outcome of one named operation. Exactly one of
// Value and Err is meaningful, distinguished by Err being nil.
type Result struct {
	Value interface{}
	Err   error
}

// Failed reports whether the operation ended in an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Set maps operation names to their pending handles.
type Set struct {
	mu         sync.Mutex
	operations map[string]*workpool.Handle
}

// NewSet creates an empty join set.
func NewSet() *Set {
	return &Set{
		operations: make(map[string]*workpool.Handle),
	}
}

// Add registers a named pending operation. It returns ErrDuplicateName
// if the name is already present in the current round, so a handle can
// never be silently discarded.
func (s *Set) Add(name string, handle *workpool.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.operations[name]; exists {
		return ErrDuplicateName
	}
	s.operations[name] = handle
	return nil
}

// HasPending reports whether any operations are registered, finished
// or not. Callers should check it before AllCompleted to distinguish
// an empty set from a finished round.
func (s *Set) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.operations) > 0
}

// AllCompleted reports whether every registered operation has
// finished. It is vacuously true for an empty set.
func (s *Set) AllCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, handle := range s.operations {
		if !handle.Done() {
			return false
		}
	}
	return true
}

// PendingCount returns the number of registered operations that have
// not yet finished.
func (s *Set) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := 0
	for _, handle := range s.operations {
		if !handle.Done() {
			pending++
		}
	}
	return pending
}

// GetCompleted removes and returns the entries whose operation has
// finished. It never blocks, partial results are included, and an
// entry is returned exactly once.
func (s *Set) GetCompleted() map[string]Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make(map[string]Result)
	for name, handle := range s.operations {
		if !handle.Done() {
			continue
		}
		value, err := handle.Take()
		results[name] = Result{Value: value, Err: err}
		delete(s.operations, name)
	}
	return results
}

// GetAllResults blocks until every registered operation finishes or
// the timeout elapses, then removes and returns the finished entries.
// Operations still running at the deadline are reported with
// ErrTimeout and stay registered. It must not be called from tick
// code.
func (s *Set) GetAllResults(timeout time.Duration) map[string]Result {
	s.mu.Lock()
	names := make([]string, 0, len(s.operations))
	handles := make([]*workpool.Handle, 0, len(s.operations))
	for name, handle := range s.operations {
		names = append(names, name)
		handles = append(handles, handle)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results := make(map[string]Result)
	for i, handle := range handles {
		name := names[i]
		if err := handle.Wait(ctx); err != nil {
			results[name] = Result{Err: ErrTimeout}
			continue
		}

		value, err := handle.Take()
		results[name] = Result{Value: value, Err: err}

		s.mu.Lock()
		delete(s.operations, name)
		s.mu.Unlock()
	}
	return results
}

// Clear discards all entries unconditionally, completed or not.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations = make(map[string]*workpool.Handle)
}
