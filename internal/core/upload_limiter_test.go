package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestUploadLimiter_SlotAccounting(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Fatalf("initial Available = %d, want 2", got)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire succeeded on a full limiter")
	}

	limiter.Release()
	if got := limiter.Available(); got != 1 {
		t.Errorf("after Release, Available = %d, want 1", got)
	}
	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after releasing all, ActiveCount = %d, want 0", got)
	}
}

func TestUploadLimiter_FreeSlotIgnoresDoneContext(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire with a free slot failed: %v", err)
	}
	if limiter.TryAcquire() {
		t.Error("slot taken by Acquire was handed out again")
	}
	limiter.Release()
	if got := limiter.Available(); got != 1 {
		t.Errorf("Available = %d, want 1", got)
	}
}

func TestUploadLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewUploadLimiter(1, 50*time.Millisecond)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("expected ErrTooManyUploads, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected to wait for the timeout", elapsed)
	}
}

func TestUploadLimiter_ContextCancellation(t *testing.T) {
	limiter := NewUploadLimiter(1, 5*time.Second)
	limiter.TryAcquire()
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestUploadLimiter_UnblocksWaiter(t *testing.T) {
	limiter := NewUploadLimiter(1, 2*time.Second)
	limiter.TryAcquire()

	done := make(chan error, 1)
	go func() { done <- limiter.Acquire(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waiter failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by Release")
	}
	limiter.Release()
}

func TestUploadLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewUploadLimiter(maxConcurrent, 5*time.Second)

	var (
		wg      sync.WaitGroup
		current atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			limiter.Release()
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > maxConcurrent {
		t.Errorf("peak concurrency %d exceeds max %d", p, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all done = %d, want 0", got)
	}
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("drain on idle limiter: %v", err)
	}

	limiter.TryAcquire()
	go func() {
		time.Sleep(30 * time.Millisecond)
		limiter.Release()
	}()
	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}

	limiter.TryAcquire()
	defer limiter.Release()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestUploadLimiter_DefaultsAndStatus(t *testing.T) {
	limiter := NewUploadLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentUploads {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentUploads)
	}
	if limiter.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWaitTime)
	}

	limiter.TryAcquire()
	defer limiter.Release()
	want := UploadLimiterStatus{Active: 1, Available: DefaultMaxConcurrentUploads - 1, MaxConcurrent: DefaultMaxConcurrentUploads}
	if got := limiter.Status(); got != want {
		t.Errorf("Status = %+v, want %+v", got, want)
	}
}
