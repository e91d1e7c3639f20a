// Package batch buffers items contributed synchronously on the control
// thread and flushes them asynchronously when a size or time threshold
// is reached.
//
// An Aggregator belongs to a single control thread: Add, Tick,
// CheckCompleted and the other accessors must not be called
// concurrently. Only the flush callback runs on a background worker,
// and at most one flush is in flight at any time.
package batch

import (
	"context"
	"log"
	"time"

	"github.com/tickio/tickio/workpool"
)

// Aggregator implements the IDLE -> FLUSHING -> IDLE batching state
// machine.
type Aggregator struct {
	opts    Options
	process ProcessFunc

	// Single worker, so flushes can never overlap.
	exec *workpool.Pool

	buffer    []interface{}
	lastFlush time.Time
	inflight  *workpool.Handle
	closed    bool

	totalBatches uint64
	totalItems   uint64
}

// New creates an Aggregator that hands flushed batches to process.
func New(opts Options, process ProcessFunc) (*Aggregator, error) {
	if process == nil {
		return nil, ErrNilProcess
	}

	defaults := DefaultOptions()
	if opts.BatchSize < 1 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaults.FlushInterval
	}

	return &Aggregator{
		opts:      opts,
		process:   process,
		exec:      workpool.New(1),
		lastFlush: time.Now(),
	}, nil
}

// Add appends one item to the buffer. It never blocks and never
// triggers a flush by itself; flushing happens in Tick.
func (a *Aggregator) Add(item interface{}) error {
	if a.closed {
		return ErrClosed
	}
	a.buffer = append(a.buffer, item)
	return nil
}

// ShouldFlush reports whether the buffer has reached the size
// threshold, or is non-empty and the flush interval has elapsed since
// the last flush was initiated.
func (a *Aggregator) ShouldFlush() bool {
	if len(a.buffer) >= a.opts.BatchSize {
		return true
	}
	return len(a.buffer) > 0 && time.Since(a.lastFlush) >= a.opts.FlushInterval
}

// Tick is called once per application tick. It initiates a flush
// exactly when ShouldFlush holds and no flush is in flight; while a
// flush is in flight, items keep accumulating for the next one.
func (a *Aggregator) Tick() {
	if a.closed {
		return
	}
	if a.ShouldFlush() {
		a.flushAsync()
	}
}

// ForceFlush initiates a flush immediately, regardless of thresholds,
// if the buffer is non-empty and nothing is in flight.
func (a *Aggregator) ForceFlush() {
	a.flushAsync()
}

// flushAsync snapshots and clears the buffer and hands the snapshot to
// the background worker. The last-flush timestamp is recorded at
// initiation, so the time trigger is governed by flush cadence rather
// than completion latency.
func (a *Aggregator) flushAsync() {
	if len(a.buffer) == 0 || a.inflight != nil {
		return
	}

	items := a.buffer
	a.buffer = nil

	handle, err := a.exec.Submit(func() (interface{}, error) {
		if err := a.process(items); err != nil {
			return nil, err
		}
		return len(items), nil
	})
	if err != nil {
		// Submission only fails once the worker is shut down; keep the
		// items so a later force-flush can retry.
		log.Printf("batch: flush submission failed: %v", err)
		a.buffer = append(items, a.buffer...)
		return
	}

	a.inflight = handle
	a.lastFlush = time.Now()
	a.totalBatches++
	a.totalItems += uint64(len(items))
}

// CheckCompleted reports, exactly once, the item count of a finished
// flush and clears the in-flight marker. A processing error is logged
// and swallowed, and the marker is still cleared, so one bad batch
// never stalls the aggregator.
func (a *Aggregator) CheckCompleted() (int, bool) {
	if a.inflight == nil || !a.inflight.Done() {
		return 0, false
	}

	value, err := a.inflight.Take()
	a.inflight = nil
	if err != nil {
		log.Printf("batch: processing failed: %v", err)
		return 0, false
	}
	return value.(int), true
}

// State returns the current flush state.
func (a *Aggregator) State() State {
	if a.inflight != nil {
		return StateFlushing
	}
	return StateIdle
}

// Stats returns current aggregator statistics.
func (a *Aggregator) Stats() Stats {
	return Stats{
		BufferSize:   len(a.buffer),
		BatchSize:    a.opts.BatchSize,
		TotalBatches: a.totalBatches,
		TotalItems:   a.totalItems,
		InFlight:     a.inflight != nil,
	}
}

// Shutdown stops the aggregator. With wait=true it waits for any
// in-flight flush, force-flushes remaining items and drains the
// worker; it must be called from a non-tick context. With wait=false
// buffered items are dropped.
func (a *Aggregator) Shutdown(wait bool) {
	if a.closed {
		return
	}
	a.closed = true

	if !wait {
		a.exec.Shutdown(false)
		return
	}

	if a.inflight != nil {
		a.inflight.Wait(context.Background())
		a.CheckCompleted()
	}
	a.flushAsync()
	a.exec.Shutdown(true)
	a.CheckCompleted()
}
