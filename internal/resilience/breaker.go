// Package resilience provides a per-operation circuit breaker used around
// outbound provider and LiveKit calls.
package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the current circuit breaker state
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// ErrOpen is returned when a call is rejected because the breaker is open
// and no fallback is configured.
type ErrOpen struct {
	Name       string
	RetryAfter time.Duration
}

func (e *ErrOpen) Error() string {
	return fmt.Sprintf("circuit breaker %q is open, retry after %s", e.Name, e.RetryAfter)
}

// Fallback is invoked with the rejection error when a call is not attempted.
type Fallback func(ctx context.Context, err error) error

// Settings controls breaker transitions.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive half-open successes that closes it.
	SuccessThreshold int
	// OpenTimeout is how long the breaker stays open before allowing trial calls.
	OpenTimeout time.Duration
	// MaxHalfOpenCalls bounds concurrent trial calls while half-open.
	MaxHalfOpenCalls int
}

// DefaultSettings provides sane defaults for provider calls.
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		MaxHalfOpenCalls: 1,
	}
}

func (s Settings) normalized() Settings {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = DefaultSettings().FailureThreshold
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = DefaultSettings().SuccessThreshold
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = DefaultSettings().OpenTimeout
	}
	if s.MaxHalfOpenCalls <= 0 {
		s.MaxHalfOpenCalls = DefaultSettings().MaxHalfOpenCalls
	}
	return s
}

// Breaker tracks call outcomes for one named operation.
type Breaker struct {
	name     string
	settings Settings
	fallback Fallback
	now      func() time.Time

	mu                sync.Mutex
	state             State
	consecutiveFails  int
	halfOpenSuccesses int
	halfOpenInFlight  int
	openedAt          time.Time
}

// NewBreaker creates a closed breaker with the given settings.
func NewBreaker(name string, settings Settings) *Breaker {
	return &Breaker{
		name:     name,
		settings: settings.normalized(),
		now:      time.Now,
		state:    StateClosed,
	}
}

// WithFallback sets the fallback invoked when calls are rejected.
func (b *Breaker) WithFallback(fb Fallback) *Breaker {
	b.fallback = fb
	return b
}

// WithClock overrides the time source (for testing).
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// State returns the current state, applying the open→half-open transition
// if the open timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentStateLocked()
}

func (b *Breaker) currentStateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.OpenTimeout {
		b.state = StateHalfOpen
		b.halfOpenSuccesses = 0
		b.halfOpenInFlight = 0
	}
	return b.state
}

// Execute runs fn through the breaker. Rejected calls go to the fallback if
// one is configured, otherwise return *ErrOpen.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.acquire(); err != nil {
		if b.fallback != nil {
			return b.fallback(ctx, err)
		}
		return err
	}

	err := fn(ctx)
	b.record(err == nil)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentStateLocked() {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.settings.MaxHalfOpenCalls {
			return &ErrOpen{Name: b.name, RetryAfter: b.settings.OpenTimeout}
		}
		b.halfOpenInFlight++
		return nil
	default:
		retryAfter := b.settings.OpenTimeout - b.now().Sub(b.openedAt)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return &ErrOpen{Name: b.name, RetryAfter: retryAfter}
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.consecutiveFails = 0
			return
		}
		b.consecutiveFails++
		if b.consecutiveFails >= b.settings.FailureThreshold {
			b.openLocked()
		}
	case StateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		if !success {
			b.openLocked()
			return
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.settings.SuccessThreshold {
			b.state = StateClosed
			b.consecutiveFails = 0
			b.halfOpenSuccesses = 0
		}
	case StateOpen:
		// A call that slipped past acquire before the breaker opened.
		// Its outcome does not change an open breaker.
	}
}

func (b *Breaker) openLocked() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.consecutiveFails = 0
	b.halfOpenSuccesses = 0
	b.halfOpenInFlight = 0
}

// Registry hands out one breaker per operation name.
type Registry struct {
	mu       sync.Mutex
	settings Settings
	breakers map[string]*Breaker
}

// NewRegistry creates a registry whose breakers share the given settings.
func NewRegistry(settings Settings) *Registry {
	return &Registry{
		settings: settings.normalized(),
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, r.settings)
	r.breakers[name] = b
	return b
}

// Execute runs fn through the named breaker.
func (r *Registry) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return r.Get(name).Execute(ctx, fn)
}
