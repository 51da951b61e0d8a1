package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Interval enforces a fixed minimum gap between consecutive requests.
// The scrape run uses one Interval to pace listing page fetches: the
// first request passes immediately, every later one waits out the gap.
type Interval struct {
	gap  time.Duration
	last time.Time
	mu   sync.Mutex
}

// NewInterval creates a limiter with the given minimum gap between requests
func NewInterval(gap time.Duration) *Interval {
	return &Interval{gap: gap}
}

// Allow reports whether the gap since the previous request has elapsed.
// An allowed call counts as a request.
func (in *Interval) Allow() bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	now := time.Now()
	if in.last.IsZero() || now.Sub(in.last) >= in.gap {
		in.last = now
		return true
	}

	return false
}

// Wait blocks until the gap has elapsed, then records the request
func (in *Interval) Wait() {
	in.mu.Lock()
	now := time.Now()
	if in.last.IsZero() {
		in.last = now
		in.mu.Unlock()
		return
	}
	remaining := in.gap - now.Sub(in.last)
	in.mu.Unlock()

	if remaining > 0 {
		time.Sleep(remaining)
	}

	in.mu.Lock()
	in.last = time.Now()
	in.mu.Unlock()
}

// Reset forgets the previous request so the next one passes immediately
func (in *Interval) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.last = time.Time{}
}
