package export

// limiter.go implements concurrency control for workbook generation.
//
// Rendering a workbook materializes the full merged row set in memory, so
// parallel exports are capped with a semaphore. When all slots are occupied,
// new requests wait up to maxWait before failing with ErrTooManyExports.
//
// The limiter also supports graceful shutdown via WaitForDrain, which blocks
// until all in-flight exports complete.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyExports is returned when all export slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyExports = errors.New("too many concurrent exports, please try again later")

// DefaultMaxConcurrentExports is the default limit for parallel exports.
const DefaultMaxConcurrentExports = 3

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 15 * time.Second

// Limiter caps concurrent workbook generation using a semaphore pattern.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter that allows at most maxConcurrent simultaneous
// exports. Requests that cannot acquire a slot within maxWait receive
// ErrTooManyExports.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire an export slot.
// Returns nil on success, ErrTooManyExports if the timeout expires.
// The caller MUST call Release() when the export completes (use defer).
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Distinguish caller cancellation from the wait timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyExports

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of currently running exports.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent exports.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all in-flight exports complete or the context is
// cancelled. Used for graceful shutdown.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}
