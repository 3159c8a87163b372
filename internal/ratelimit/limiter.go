// Package ratelimit implements an in-memory sliding-window rate limiter.
// It is single-process only; multi-node deployments get per-node limits.
package ratelimit

import (
	"sync"
	"time"
)

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter tracks request timestamps per key over a sliding window.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string][]time.Time
	checks  int
}

// cleanupEvery controls how often stale keys are swept, counted in checks.
const cleanupEvery = 1024

// NewLimiter creates a limiter allowing limit requests per window per key.
func NewLimiter(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string][]time.Time),
	}
}

// WithClock overrides the time source (for testing).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check prunes expired timestamps for key, then either records the request
// and admits it, or rejects it with a retry-after of at least one second.
func (l *Limiter) Check(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := pruneBefore(l.entries[key], cutoff)

	if len(recent) >= l.limit {
		l.entries[key] = recent
		retryAfter := recent[0].Add(l.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		l.maybeCleanupLocked(cutoff)
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}
	}

	l.entries[key] = append(recent, now)
	l.maybeCleanupLocked(cutoff)
	return Result{Allowed: true, Remaining: l.limit - len(recent) - 1}
}

// Keys returns the number of tracked keys (for tests and diagnostics).
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// maybeCleanupLocked opportunistically drops keys whose timestamps have all
// aged out, so idle clients do not accumulate forever.
func (l *Limiter) maybeCleanupLocked(cutoff time.Time) {
	l.checks++
	if l.checks%cleanupEvery != 0 {
		return
	}
	for key, stamps := range l.entries {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.entries, key)
		}
	}
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && !stamps[idx].After(cutoff) {
		idx++
	}
	return stamps[idx:]
}
