// Package resilience provides reusable policies that guard calls to unreliable dependencies.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker refuses a call without invoking the dependency.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the logical state of a CircuitBreaker.
type State int

const (
	// StateClosed lets every call through and counts consecutive failures.
	StateClosed State = iota
	// StateOpen short-circuits every call until the cooldown elapses.
	StateOpen
	// StateHalfOpen admits a limited number of trial calls.
	StateHalfOpen
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// BreakerConfig holds the thresholds of a CircuitBreaker. Zero values fall back to defaults.
type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
	SuccessThreshold int
	HalfOpenMaxCalls int
}

// DefaultBreakerConfig returns three failures to open, a 30s cooldown and a single trial call.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		SuccessThreshold: 1,
		HalfOpenMaxCalls: 1,
	}
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	d := DefaultBreakerConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = d.Cooldown
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = d.SuccessThreshold
	}
	if c.HalfOpenMaxCalls <= 0 {
		c.HalfOpenMaxCalls = d.HalfOpenMaxCalls
	}
	return c
}

// BreakerOption customizes a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithIsFailure sets the predicate deciding whether an error counts against the breaker.
// Errors for which it returns false are treated as successful calls.
func WithIsFailure(fn func(error) bool) BreakerOption {
	return func(cb *CircuitBreaker) {
		cb.isFailure = fn
	}
}

// WithOnStateChange registers a hook invoked after every transition, outside the lock.
func WithOnStateChange(fn func(name string, from, to State)) BreakerOption {
	return func(cb *CircuitBreaker) {
		cb.onStateChange = fn
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) {
		cb.now = now
	}
}

// CircuitBreaker guards a single dependency. It knows nothing about what it protects.
type CircuitBreaker struct {
	name          string
	config        BreakerConfig
	isFailure     func(error) bool
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	inFlight      int
	lastFailureAt time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(name string, config BreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:      name,
		config:    config.withDefaults(),
		isFailure: func(err error) bool { return err != nil },
		now:       time.Now,
		state:     StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Name returns the breaker name used in logs and metrics.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state, promoting Open to HalfOpen when the cooldown has elapsed.
func (cb *CircuitBreaker) State() State {
	state, _, _ := cb.Counts()
	return state
}

// Counts returns the state and the failure/success counters as one consistent snapshot.
func (cb *CircuitBreaker) Counts() (State, int, int) {
	cb.mu.Lock()
	changed, from := cb.promoteLocked()
	state, failures, successes := cb.state, cb.failures, cb.successes
	cb.mu.Unlock()

	if changed {
		cb.notify(from, state)
	}
	return state, failures, successes
}

// Execute runs fn unless the breaker is open. Open breakers return ErrCircuitOpen
// without calling fn. A panic in fn counts as a failure and keeps propagating.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.before(); err != nil {
		return err
	}

	panicked := true
	defer func() {
		if panicked {
			cb.record(true)
		}
	}()
	err := fn(ctx)
	panicked = false

	cb.record(cb.isFailure(err))
	return err
}

// Call is the value-returning form of Execute.
func Call[T any](ctx context.Context, cb *CircuitBreaker, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := cb.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = fn(ctx)
		return callErr
	})
	return result, err
}

// before admits or rejects a call as one critical section.
func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	changed, from := cb.promoteLocked()
	var err error
	switch cb.state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if cb.inFlight >= cb.config.HalfOpenMaxCalls {
			err = ErrCircuitOpen
		} else {
			cb.inFlight++
		}
	}
	to := cb.state
	cb.mu.Unlock()

	if changed {
		cb.notify(from, to)
	}
	return err
}

// record releases the slot of an admitted call and accounts for its outcome.
func (cb *CircuitBreaker) record(failed bool) {
	cb.mu.Lock()
	from := cb.state
	if cb.state == StateHalfOpen && cb.inFlight > 0 {
		cb.inFlight--
	}

	if failed {
		cb.lastFailureAt = cb.now()
		switch cb.state {
		case StateClosed:
			cb.failures++
			if cb.failures >= cb.config.FailureThreshold {
				cb.transitionLocked(StateOpen)
			}
		case StateHalfOpen:
			cb.transitionLocked(StateOpen)
		}
	} else {
		switch cb.state {
		case StateClosed:
			cb.failures = 0
		case StateHalfOpen:
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.transitionLocked(StateClosed)
			}
		}
	}
	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

// promoteLocked moves an open breaker to half-open once the cooldown since the last
// failure has elapsed. Callers must hold mu.
func (cb *CircuitBreaker) promoteLocked() (bool, State) {
	if cb.state != StateOpen {
		return false, cb.state
	}
	if cb.now().Sub(cb.lastFailureAt) < cb.config.Cooldown {
		return false, cb.state
	}
	cb.transitionLocked(StateHalfOpen)
	return true, StateOpen
}

// transitionLocked is the only place the state changes. Counters never survive a transition.
func (cb *CircuitBreaker) transitionLocked(to State) {
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.inFlight = 0
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}
