package core

// limiter.go bounds the number of large tables generated at once.
//
// Small tables are cheap and skip the limiter entirely; the Service only
// takes a slot for tables at or above the parallel threshold. When every
// slot is taken a caller waits up to maxWait and then gets
// ErrTooManyGenerations. WaitForDrain lets shutdown wait for in-flight work.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyGenerations is returned when no generation slot frees up in time.
var ErrTooManyGenerations = errors.New("too many concurrent generations, please try again later")

// DefaultMaxConcurrentGenerations is the default number of large generations.
const DefaultMaxConcurrentGenerations = 4

// DefaultMaxGenerationWait is how long to wait for a slot before rejecting.
const DefaultMaxGenerationWait = 30 * time.Second

// GenerationLimiter is a counting semaphore for large generations.
type GenerationLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewGenerationLimiter allows at most maxConcurrent generations at once.
// Non-positive arguments fall back to the defaults.
func NewGenerationLimiter(maxConcurrent int, maxWait time.Duration) *GenerationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentGenerations
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxGenerationWait
	}
	return &GenerationLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it when done.
// It returns ctx.Err() if ctx ends first and ErrTooManyGenerations if the
// wait times out.
func (l *GenerationLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyGenerations
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *GenerationLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *GenerationLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Do runs fn while holding a slot.
func (l *GenerationLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// Active returns the number of generations holding a slot.
func (l *GenerationLimiter) Active() int {
	return int(l.active.Load())
}

// Available returns the number of free slots.
func (l *GenerationLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// MaxConcurrent returns the slot count.
func (l *GenerationLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no generation holds a slot or ctx ends.
func (l *GenerationLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a snapshot of the limiter for the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *GenerationLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.Active(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
