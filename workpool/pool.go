package workpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"
)

// task pairs a unit of work with the handle its outcome is delivered
// through.
type task struct {
	work   Work
	handle *Handle
}

// Pool runs submitted work on a bounded set of worker goroutines.
// Submissions are queued without bound so Submit never blocks the
// calling thread; a work failure (returned error or panic) is captured
// in the work's Handle and never propagates asynchronously.
type Pool struct {
	workers int

	mu     sync.Mutex
	queue  deque.Deque[*task]
	closed bool

	// wake nudges one parked worker after a push. Workers re-check the
	// queue before parking, so a dropped signal cannot strand work.
	wake chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// taskWG tracks accepted work for Shutdown(wait=true) draining
	taskWG sync.WaitGroup

	// Atomic counters for statistics
	submitted uint64
	completed uint64
	failed    uint64
}

// New creates a pool with maxWorkers worker goroutines and starts
// them. Values below 1 are treated as 1.
func New(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers: maxWorkers,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < maxWorkers; i++ {
		p.wg.Add(1)
		go p.workerLoop()
	}

	return p
}

// Submit queues work for background execution and returns its Handle.
// It never blocks. It returns ErrPoolClosed once Shutdown has begun.
func (p *Pool) Submit(work Work) (*Handle, error) {
	if work == nil {
		return nil, ErrNilWork
	}

	h := newHandle()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.queue.PushBack(&task{work: work, handle: h})
	p.taskWG.Add(1)
	p.mu.Unlock()

	atomic.AddUint64(&p.submitted, 1)
	p.signal()

	return h, nil
}

// Shutdown stops accepting new submissions. With wait=true it blocks
// until queued and in-flight work has drained; callers must not invoke
// it from tick code. With wait=false it returns immediately, failing
// every still-queued handle with ErrPoolClosed; work already started
// runs to completion on its worker.
func (p *Pool) Shutdown(wait bool) {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if wait {
		p.taskWG.Wait()
		p.cancel()
		p.wg.Wait()
		return
	}

	p.cancel()

	// Fail abandoned work so no handle is waited on forever.
	p.mu.Lock()
	for p.queue.Len() > 0 {
		t := p.queue.PopFront()
		t.handle.complete(nil, ErrPoolClosed)
		atomic.AddUint64(&p.failed, 1)
		p.taskWG.Done()
	}
	p.mu.Unlock()
}

// Stats returns current runtime statistics for the pool.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := p.queue.Len()
	p.mu.Unlock()

	return Stats{
		Workers:   p.workers,
		Queued:    queued,
		Submitted: atomic.LoadUint64(&p.submitted),
		Completed: atomic.LoadUint64(&p.completed),
		Failed:    atomic.LoadUint64(&p.failed),
	}
}

// signal nudges one parked worker without ever blocking.
func (p *Pool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// workerLoop is the main processing loop for one worker goroutine.
func (p *Pool) workerLoop() {
	defer p.wg.Done()

	for {
		if t := p.next(); t != nil {
			p.runTask(t)
			continue
		}

		select {
		case <-p.wake:
		case <-p.ctx.Done():
			return
		}
	}
}

// next pops the oldest queued task, re-signalling if more remain so
// sibling workers wake up too.
func (p *Pool) next() *task {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.Len() == 0 {
		return nil
	}
	t := p.queue.PopFront()
	if p.queue.Len() > 0 {
		p.signal()
	}
	return t
}

// runTask executes one task and publishes its outcome.
func (p *Pool) runTask(t *task) {
	defer p.taskWG.Done()

	value, err := invoke(t.work)
	if err != nil {
		atomic.AddUint64(&p.failed, 1)
	} else {
		atomic.AddUint64(&p.completed, 1)
	}
	t.handle.complete(value, err)
}

// invoke runs work, converting a panic into an ordinary error so it
// surfaces through the handle instead of killing the worker.
func invoke(work Work) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("work panicked: %v", r)
		}
	}()

	return work()
}
