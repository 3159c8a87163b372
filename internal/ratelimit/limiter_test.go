package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewLimiter(limit, window).WithClock(clock.Now), clock
}

func TestLimiterRejectsOverLimit(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res := l.Check("client-1")
		require.True(t, res.Allowed, "request %d should be allowed", i+1)
	}

	res := l.Check("client-1")
	assert.False(t, res.Allowed)
	assert.GreaterOrEqual(t, res.RetryAfter, time.Second)
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}

func TestLimiterRemainingCountsDown(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	assert.Equal(t, 2, l.Check("client-1").Remaining)
	assert.Equal(t, 1, l.Check("client-1").Remaining)
	assert.Equal(t, 0, l.Check("client-1").Remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	assert.True(t, l.Check("client-1").Allowed)
	assert.False(t, l.Check("client-1").Allowed)
	assert.True(t, l.Check("client-2").Allowed)
}

func TestLimiterCapacityFreesAfterWindow(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	require.True(t, l.Check("client-1").Allowed)
	clock.Advance(30 * time.Second)
	require.True(t, l.Check("client-1").Allowed)
	require.False(t, l.Check("client-1").Allowed)

	// Oldest stamp ages out at t+60s; one slot frees.
	clock.Advance(31 * time.Second)
	assert.True(t, l.Check("client-1").Allowed)
	assert.False(t, l.Check("client-1").Allowed)
}

func TestLimiterRetryAfterTracksOldestRequest(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	require.True(t, l.Check("client-1").Allowed)
	clock.Advance(20 * time.Second)

	res := l.Check("client-1")
	require.False(t, res.Allowed)
	assert.Equal(t, 40*time.Second, res.RetryAfter)
}

func TestLimiterCleansUpStaleKeys(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)

	for i := 0; i < 100; i++ {
		l.Check(fmt.Sprintf("stale-%d", i))
	}
	require.Equal(t, 100, l.Keys())

	clock.Advance(2 * time.Minute)

	// Drive enough checks to cross a cleanup boundary.
	for i := 0; i < cleanupEvery; i++ {
		l.Check("active")
	}

	assert.LessOrEqual(t, l.Keys(), 1)
}
