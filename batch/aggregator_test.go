package batch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// checkUntil polls CheckCompleted until a flush is reported or the
// timeout elapses.
func checkUntil(t *testing.T, a *Aggregator, timeout time.Duration) int {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if count, ok := a.CheckCompleted(); ok {
			return count
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("No flush completion reported within %v", timeout)
	return 0
}

func TestSizeTriggerBoundary(t *testing.T) {
	var batches [][]interface{}
	var mu sync.Mutex
	agg, err := New(Options{BatchSize: 5, FlushInterval: time.Hour}, func(items []interface{}) error {
		mu.Lock()
		batches = append(batches, items)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}
	defer agg.Shutdown(true)

	// One below the threshold must not flush.
	for i := 0; i < 4; i++ {
		if err := agg.Add(i); err != nil {
			t.Fatalf("Failed to add item %d: %v", i, err)
		}
	}
	agg.Tick()
	if agg.State() != StateIdle {
		t.Error("Expected no flush below batch size")
	}

	// Reaching the threshold triggers exactly one flush of exactly
	// batch-size items.
	if err := agg.Add(4); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}
	agg.Tick()

	count := checkUntil(t, agg, time.Second)
	if count != 5 {
		t.Errorf("Expected flush of 5 items, got %d", count)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("Expected 1 batch, got %d", len(batches))
	}
	if len(batches[0]) != 5 {
		t.Errorf("Expected batch of 5 items, got %d", len(batches[0]))
	}
}

func TestTimeTrigger(t *testing.T) {
	agg, err := New(Options{BatchSize: 100, FlushInterval: 20 * time.Millisecond}, func(items []interface{}) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}
	defer agg.Shutdown(true)

	if err := agg.Add("entry"); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}

	agg.Tick()
	if agg.State() != StateIdle {
		t.Error("Expected no flush before the interval elapses")
	}

	time.Sleep(25 * time.Millisecond)
	agg.Tick()

	count := checkUntil(t, agg, time.Second)
	if count != 1 {
		t.Errorf("Expected flush of 1 item, got %d", count)
	}
}

func TestEmptyBufferNeverFlushes(t *testing.T) {
	agg, err := New(Options{BatchSize: 1, FlushInterval: time.Millisecond}, func(items []interface{}) error {
		t.Error("Process called with empty buffer")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}
	defer agg.Shutdown(true)

	time.Sleep(5 * time.Millisecond)
	agg.Tick()
	agg.ForceFlush()
	if agg.State() != StateIdle {
		t.Error("Expected no flush with an empty buffer")
	}
}

func TestNoConcurrentFlushes(t *testing.T) {
	var inFlight, overlaps int32
	agg, err := New(Options{BatchSize: 1, FlushInterval: time.Hour}, func(items []interface{}) error {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}

	flushes := 0
	for i := 0; i < 50; i++ {
		if err := agg.Add(i); err != nil {
			t.Fatalf("Failed to add item %d: %v", i, err)
		}
		agg.Tick()
		if _, ok := agg.CheckCompleted(); ok {
			flushes++
		}
		time.Sleep(time.Millisecond)
	}
	agg.Shutdown(true)

	if atomic.LoadInt32(&overlaps) != 0 {
		t.Errorf("Expected no overlapping flushes, got %d overlaps", overlaps)
	}
	if flushes == 0 {
		t.Error("Expected at least one flush to be reported")
	}
}

func TestTickWhileInFlightAccumulates(t *testing.T) {
	release := make(chan struct{})
	var batchSizes []int
	var mu sync.Mutex
	agg, err := New(Options{BatchSize: 2, FlushInterval: time.Hour}, func(items []interface{}) error {
		mu.Lock()
		batchSizes = append(batchSizes, len(items))
		mu.Unlock()
		if len(batchSizes) == 1 {
			<-release
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}

	agg.Add(1)
	agg.Add(2)
	agg.Tick()
	if agg.State() != StateFlushing {
		t.Fatal("Expected first flush to be in flight")
	}

	// More items arrive while the flush is blocked; further ticks must
	// not start a second flush.
	agg.Add(3)
	agg.Add(4)
	agg.Add(5)
	agg.Tick()
	agg.Tick()

	stats := agg.Stats()
	if stats.TotalBatches != 1 {
		t.Errorf("Expected 1 initiated batch while in flight, got %d", stats.TotalBatches)
	}
	if stats.BufferSize != 3 {
		t.Errorf("Expected 3 buffered items, got %d", stats.BufferSize)
	}

	close(release)
	if count := checkUntil(t, agg, time.Second); count != 2 {
		t.Errorf("Expected first flush to report 2 items, got %d", count)
	}

	// The accumulated items go out in the next flush.
	agg.Tick()
	if count := checkUntil(t, agg, time.Second); count != 3 {
		t.Errorf("Expected second flush to report 3 items, got %d", count)
	}

	agg.Shutdown(true)

	stats = agg.Stats()
	if stats.TotalItems != 5 {
		t.Errorf("Expected 5 total items flushed, got %d", stats.TotalItems)
	}
}

func TestCheckCompletedIsOneShot(t *testing.T) {
	agg, err := New(Options{BatchSize: 1, FlushInterval: time.Hour}, func(items []interface{}) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}
	defer agg.Shutdown(true)

	agg.Add("x")
	agg.Tick()

	checkUntil(t, agg, time.Second)
	if _, ok := agg.CheckCompleted(); ok {
		t.Error("Expected no completion reported twice")
	}
}

func TestProcessErrorIsSwallowed(t *testing.T) {
	agg, err := New(Options{BatchSize: 1, FlushInterval: time.Hour}, func(items []interface{}) error {
		if items[0] == "bad" {
			return errors.New("downstream rejected batch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}
	defer agg.Shutdown(true)

	agg.Add("bad")
	agg.Tick()

	// The failed flush clears the in-flight marker without reporting a
	// count.
	deadline := time.Now().Add(time.Second)
	for agg.State() == StateFlushing && time.Now().Before(deadline) {
		agg.CheckCompleted()
		time.Sleep(time.Millisecond)
	}
	if agg.State() != StateIdle {
		t.Fatal("Expected in-flight marker cleared after failed flush")
	}

	// The aggregator keeps flushing afterwards.
	agg.Add("good")
	agg.Tick()
	if count := checkUntil(t, agg, time.Second); count != 1 {
		t.Errorf("Expected flush of 1 item after failure, got %d", count)
	}
}

func TestForceFlush(t *testing.T) {
	agg, err := New(Options{BatchSize: 100, FlushInterval: time.Hour}, func(items []interface{}) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}
	defer agg.Shutdown(true)

	agg.Add(1)
	agg.Add(2)
	agg.ForceFlush()

	if count := checkUntil(t, agg, time.Second); count != 2 {
		t.Errorf("Expected forced flush of 2 items, got %d", count)
	}
}

func TestShutdownFlushesRemaining(t *testing.T) {
	var flushed int32
	agg, err := New(Options{BatchSize: 100, FlushInterval: time.Hour}, func(items []interface{}) error {
		atomic.AddInt32(&flushed, int32(len(items)))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create aggregator: %v", err)
	}

	agg.Add(1)
	agg.Add(2)
	agg.Add(3)
	agg.Shutdown(true)

	if got := atomic.LoadInt32(&flushed); got != 3 {
		t.Errorf("Expected 3 items flushed on shutdown, got %d", got)
	}

	if err := agg.Add(4); err != ErrClosed {
		t.Errorf("Expected ErrClosed after shutdown, got %v", err)
	}
}
