// Package tracker submits named units of blocking work to a worker
// pool and reports their outcomes through per-tick polling.
//
// A node submits work under an application-chosen id during one tick
// and collects the result with PollCompleted on a later tick; no call
// in this package blocks the calling thread except Shutdown(true).
package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tickio/tickio/workpool"
)

// entry is one tracked operation: its handle plus submission time.
type entry struct {
	handle    *workpool.Handle
	submitted time.Time
}

// Tracker tracks in-flight operations by id. Ids must be unique among
// currently pending operations; an id may be reused after its outcome
// has been reported.
type Tracker struct {
	pool *workpool.Pool

	mu      sync.Mutex
	pending map[string]entry
	closed  bool

	// Atomic counters for statistics
	completed uint64
	failed    uint64
}

// New creates a Tracker backed by its own worker pool of maxWorkers
// goroutines.
func New(maxWorkers int) *Tracker {
	return &Tracker{
		pool:    workpool.New(maxWorkers),
		pending: make(map[string]entry),
	}
}

// Submit launches work under the given id and records the submission
// time. It returns ErrDuplicateID if the id belongs to a pending
// operation and ErrClosed after Shutdown.
func (t *Tracker) Submit(id string, work workpool.Work) (*workpool.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if _, exists := t.pending[id]; exists {
		return nil, ErrDuplicateID
	}

	handle, err := t.pool.Submit(work)
	if err != nil {
		return nil, err
	}

	t.pending[id] = entry{handle: handle, submitted: time.Now()}
	return handle, nil
}

// PollCompleted reports every tracked operation that has finished
// since the previous poll, removing each from the pending set. Call it
// once per tick; it never blocks, and an operation is reported exactly
// once.
func (t *Tracker) PollCompleted() []Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	var outcomes []Outcome
	for id, e := range t.pending {
		if !e.handle.Done() {
			continue
		}

		value, err := e.handle.Take()
		if err != nil {
			atomic.AddUint64(&t.failed, 1)
		} else {
			atomic.AddUint64(&t.completed, 1)
		}

		outcomes = append(outcomes, Outcome{
			ID:       id,
			Value:    value,
			Err:      err,
			Duration: time.Since(e.submitted),
		})
		delete(t.pending, id)
	}

	return outcomes
}

// IsPending reports whether the id belongs to an operation that has
// not yet been reported.
func (t *Tracker) IsPending(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.pending[id]
	return exists
}

// PendingCount returns the number of operations awaiting a poll.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Stats returns cumulative counters for this tracker.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	pending := len(t.pending)
	t.mu.Unlock()

	return Stats{
		Pending:   pending,
		Completed: atomic.LoadUint64(&t.completed),
		Failed:    atomic.LoadUint64(&t.failed),
	}
}

// Shutdown stops accepting submissions. With wait=true it blocks until
// pending work drains, so it must be called from a non-tick context;
// with wait=false pending work is abandoned.
func (t *Tracker) Shutdown(wait bool) {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.pool.Shutdown(wait)
}
