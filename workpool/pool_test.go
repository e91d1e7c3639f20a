package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitDone(t *testing.T, h *Handle, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Work did not complete within %v: %v", timeout, err)
	}
}

func TestSubmitAndTake(t *testing.T) {
	pool := New(2)
	defer pool.Shutdown(true)

	handle, err := pool.Submit(func() (interface{}, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	waitDone(t, handle, time.Second)

	value, err := handle.Take()
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected result 42, got %v", value)
	}
}

func TestTakeBeforeDone(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown(true)

	release := make(chan struct{})
	handle, err := pool.Submit(func() (interface{}, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	if handle.Done() {
		t.Error("Expected handle to be pending")
	}
	if _, err := handle.Take(); err != ErrNotDone {
		t.Errorf("Expected ErrNotDone, got %v", err)
	}

	close(release)
}

func TestTakeIsOneShot(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown(true)

	handle, err := pool.Submit(func() (interface{}, error) {
		return "once", nil
	})
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	waitDone(t, handle, time.Second)

	if _, err := handle.Take(); err != nil {
		t.Fatalf("First take failed: %v", err)
	}
	if _, err := handle.Take(); err != ErrConsumed {
		t.Errorf("Expected ErrConsumed on second take, got %v", err)
	}
}

func TestWorkErrorIsCaptured(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown(true)

	workErr := errors.New("disk on fire")
	handle, err := pool.Submit(func() (interface{}, error) {
		return nil, workErr
	})
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	waitDone(t, handle, time.Second)

	if _, err := handle.Take(); err != workErr {
		t.Errorf("Expected work error %v, got %v", workErr, err)
	}
}

func TestPanicIsCaptured(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown(true)

	handle, err := pool.Submit(func() (interface{}, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	waitDone(t, handle, time.Second)

	_, err = handle.Take()
	if err == nil {
		t.Fatal("Expected an error from panicking work")
	}

	stats := pool.Stats()
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failed work item, got %d", stats.Failed)
	}
}

func TestQueueBeyondWorkers(t *testing.T) {
	pool := New(2)
	defer pool.Shutdown(true)

	var ran int32
	handles := make([]*Handle, 0, 10)
	for i := 0; i < 10; i++ {
		h, err := pool.Submit(func() (interface{}, error) {
			atomic.AddInt32(&ran, 1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("Failed to submit work %d: %v", i, err)
		}
		handles = append(handles, h)
	}

	for i, h := range handles {
		waitDone(t, h, time.Second)
		if _, err := h.Take(); err != nil {
			t.Errorf("Work %d failed: %v", i, err)
		}
	}

	if got := atomic.LoadInt32(&ran); got != 10 {
		t.Errorf("Expected 10 work items to run, got %d", got)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(1)
	pool.Shutdown(true)

	if _, err := pool.Submit(func() (interface{}, error) { return nil, nil }); err != ErrPoolClosed {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
}

func TestShutdownWaitDrains(t *testing.T) {
	pool := New(1)

	var ran int32
	for i := 0; i < 5; i++ {
		_, err := pool.Submit(func() (interface{}, error) {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&ran, 1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("Failed to submit work %d: %v", i, err)
		}
	}

	pool.Shutdown(true)

	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Errorf("Expected all 5 work items to drain, got %d", got)
	}
}

func TestShutdownNoWaitFailsQueued(t *testing.T) {
	pool := New(1)

	release := make(chan struct{})
	blocker, err := pool.Submit(func() (interface{}, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Failed to submit blocker: %v", err)
	}

	// Give the worker a moment to pick up the blocker.
	time.Sleep(10 * time.Millisecond)

	queued, err := pool.Submit(func() (interface{}, error) { return nil, nil })
	if err != nil {
		t.Fatalf("Failed to submit queued work: %v", err)
	}

	pool.Shutdown(false)

	if !queued.Done() {
		t.Fatal("Expected abandoned handle to be completed")
	}
	if _, err := queued.Take(); err != ErrPoolClosed {
		t.Errorf("Expected ErrPoolClosed on abandoned handle, got %v", err)
	}

	// In-flight work still runs to completion.
	close(release)
	waitDone(t, blocker, time.Second)
	if _, err := blocker.Take(); err != nil {
		t.Errorf("Expected in-flight work to succeed, got %v", err)
	}
}

func TestStats(t *testing.T) {
	pool := New(2)
	defer pool.Shutdown(true)

	ok, err := pool.Submit(func() (interface{}, error) { return nil, nil })
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}
	bad, err := pool.Submit(func() (interface{}, error) { return nil, errors.New("nope") })
	if err != nil {
		t.Fatalf("Failed to submit work: %v", err)
	}

	waitDone(t, ok, time.Second)
	waitDone(t, bad, time.Second)

	stats := pool.Stats()
	if stats.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", stats.Workers)
	}
	if stats.Submitted != 2 {
		t.Errorf("Expected 2 submitted, got %d", stats.Submitted)
	}
	if stats.Completed != 1 {
		t.Errorf("Expected 1 completed, got %d", stats.Completed)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", stats.Failed)
	}
}

func TestSubmitNilWork(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown(true)

	if _, err := pool.Submit(nil); err != ErrNilWork {
		t.Errorf("Expected ErrNilWork, got %v", err)
	}
}
