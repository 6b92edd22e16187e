package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerationLimiter_AcquireRelease(t *testing.T) {
	l := NewGenerationLimiter(2, time.Second)
	ctx := context.Background()

	if got := l.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got := l.Active(); got != 2 {
		t.Errorf("Active = %d, want 2", got)
	}
	if got := l.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	l.Release()
	l.Release()
	if got := l.Active(); got != 0 {
		t.Errorf("Active after Release = %d, want 0", got)
	}
}

func TestGenerationLimiter_TimesOut(t *testing.T) {
	l := NewGenerationLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if !l.TryAcquire() {
		t.Fatal("TryAcquire() = false on empty limiter")
	}
	defer l.Release()

	if l.TryAcquire() {
		t.Fatal("TryAcquire() = true on full limiter")
	}

	start := time.Now()
	err := l.Acquire(ctx)
	if !errors.Is(err, ErrTooManyGenerations) {
		t.Errorf("Acquire() error = %v, want ErrTooManyGenerations", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire() returned after %v, want about 50ms", elapsed)
	}
}

func TestGenerationLimiter_ContextCancelled(t *testing.T) {
	l := NewGenerationLimiter(1, 5*time.Second)
	l.TryAcquire()
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() did not return after cancel")
	}
}

func TestGenerationLimiter_Do(t *testing.T) {
	const maxConcurrent = 3
	l := NewGenerationLimiter(maxConcurrent, time.Second)

	var (
		wg      sync.WaitGroup
		current atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), func() error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > maxConcurrent {
		t.Errorf("peak concurrency = %d, want <= %d", got, maxConcurrent)
	}
	if got := l.Active(); got != 0 {
		t.Errorf("Active after Do = %d, want 0", got)
	}

	boom := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Do() error = %v, want boom", err)
	}
}

func TestGenerationLimiter_WaitForDrain(t *testing.T) {
	l := NewGenerationLimiter(2, time.Second)
	l.TryAcquire()

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain() returned with an active generation")
	case <-time.After(60 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain() did not return after Release")
	}
}

func TestGenerationLimiter_Defaults(t *testing.T) {
	l := NewGenerationLimiter(0, 0)
	status := l.Status()
	if status.MaxConcurrent != DefaultMaxConcurrentGenerations || status.Available != DefaultMaxConcurrentGenerations {
		t.Errorf("Status() = %+v", status)
	}
}
