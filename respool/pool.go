// Package respool manages a fixed set of reusable, expensive-to-create
// resources and executes closures against a borrowed resource on a
// worker pool.
//
// Borrowing happens inside the background worker, never on the control
// thread: a node calls ExecuteAsync during a tick and polls the
// returned handle on later ticks. A resource is always either in the
// pool or held by exactly one in-flight operation.
package respool

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tickio/tickio/workpool"
)

// Pool holds pre-created resources in a buffered channel, which makes
// borrow and return atomic with respect to each other.
type Pool struct {
	opts    Options
	factory Factory

	resources chan interface{}
	size      int

	exec *workpool.Pool

	mu     sync.Mutex
	closed bool

	// Atomic counters for statistics
	totalOps  uint64
	failedOps uint64
}

// New creates a pool and eagerly fills it with opts.MaxConnections
// resources. A factory failure during the fill is logged and yields a
// smaller pool rather than failing construction: running under
// capacity is a normal condition while an external system recovers.
// The shortfall is visible through Stats.Size.
func New(factory Factory, opts Options) (*Pool, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	defaults := DefaultOptions()
	if opts.MaxConnections < 1 {
		opts.MaxConnections = defaults.MaxConnections
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = defaults.AcquireTimeout
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = opts.MaxConnections
	}

	p := &Pool{
		opts:      opts,
		factory:   factory,
		resources: make(chan interface{}, opts.MaxConnections),
		exec:      workpool.New(opts.MaxWorkers),
	}

	for i := 0; i < opts.MaxConnections; i++ {
		resource, err := factory()
		if err != nil {
			log.Printf("respool: failed to create resource %d of %d: %v", i+1, opts.MaxConnections, err)
			continue
		}
		p.resources <- resource
		p.size++
	}

	return p, nil
}

// ExecuteAsync runs operation against a borrowed resource on a
// background worker and reports the outcome through the returned
// handle. The resource is returned to the pool regardless of success,
// failure or panic. If no resource frees up within AcquireTimeout the
// operation fails with ErrExhausted.
func (p *Pool) ExecuteAsync(operation Operation) (*workpool.Handle, error) {
	if operation == nil {
		return nil, ErrNilOperation
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.mu.Unlock()

	return p.exec.Submit(func() (interface{}, error) {
		return p.execute(operation)
	})
}

// execute borrows a resource, runs the operation and unconditionally
// returns the resource. Runs on a worker goroutine.
func (p *Pool) execute(operation Operation) (interface{}, error) {
	select {
	case resource := <-p.resources:
		defer func() { p.resources <- resource }()

		value, err := runOperation(operation, resource)
		if err != nil {
			atomic.AddUint64(&p.failedOps, 1)
			return nil, err
		}
		atomic.AddUint64(&p.totalOps, 1)
		return value, nil

	case <-time.After(p.opts.AcquireTimeout):
		atomic.AddUint64(&p.failedOps, 1)
		return nil, ErrExhausted
	}
}

// runOperation invokes the operation, converting a panic into an
// ordinary error so the deferred resource return above always runs
// before the outcome is published.
func runOperation(operation Operation, resource interface{}) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()

	return operation(resource)
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		Available:        len(p.resources),
		MaxConnections:   p.opts.MaxConnections,
		Size:             p.size,
		TotalOperations:  atomic.LoadUint64(&p.totalOps),
		FailedOperations: atomic.LoadUint64(&p.failedOps),
	}
}

// Shutdown waits for in-flight operations to finish, then closes every
// resource that implements io.Closer. It must be called from a
// non-tick context.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	// Draining the worker pool first guarantees every borrowed
	// resource has been returned before we start closing.
	p.exec.Shutdown(true)

	for {
		select {
		case resource := <-p.resources:
			if closer, ok := resource.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					log.Printf("respool: failed to close resource: %v", err)
				}
			}
		default:
			return
		}
	}
}
