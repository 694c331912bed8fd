// Package ratelimit implements per-caller fixed-window admission control shared by the
// token validation and secret lookup entry points.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MaxCallerLength is the longest caller identity accepted, in bytes.
const MaxCallerLength = 256

// Category names an endpoint family with its own request ceiling.
type Category string

const (
	// CategoryAuth covers the token validation endpoint.
	CategoryAuth Category = "auth"
	// CategorySecrets covers the secret lookup endpoints.
	CategorySecrets Category = "secrets"
)

var (
	// ErrInvalidCaller is returned for empty or overlong caller identities.
	ErrInvalidCaller = errors.New("invalid caller identity")

	// ErrUnknownCategory is returned when no ceiling is configured for a category.
	ErrUnknownCategory = errors.New("unknown rate limit category")
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Config holds the shared window length and the per-category ceilings.
type Config struct {
	Window   time.Duration
	Ceilings map[Category]int
}

type windowKey struct {
	category Category
	caller   string
}

type window struct {
	count   int
	startAt time.Time
}

// Limiter counts requests per (category, caller) inside fixed windows.
type Limiter struct {
	window   time.Duration
	ceilings map[Category]int
	now      func() time.Time

	mu      sync.Mutex
	windows map[windowKey]*window
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter. The ceilings map is copied.
func New(config Config, opts ...Option) *Limiter {
	ceilings := make(map[Category]int, len(config.Ceilings))
	for category, ceiling := range config.Ceilings {
		ceilings[category] = ceiling
	}
	windowLength := config.Window
	if windowLength <= 0 {
		windowLength = time.Minute
	}

	l := &Limiter{
		window:   windowLength,
		ceilings: ceilings,
		now:      time.Now,
		windows:  make(map[windowKey]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one request for caller in category and reports whether it is admitted.
// A missing or expired window starts a new one with count 1.
func (l *Limiter) Allow(category Category, caller string) (Decision, error) {
	if caller == "" || len(caller) > MaxCallerLength {
		return Decision{}, ErrInvalidCaller
	}
	ceiling, ok := l.ceilings[category]
	if !ok {
		return Decision{}, ErrUnknownCategory
	}

	now := l.now()
	key := windowKey{category: category, caller: caller}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.startAt.Add(l.window)) {
		w = &window{count: 1, startAt: now}
		l.windows[key] = w
		return Decision{Allowed: ceiling >= 1, Remaining: max(ceiling-1, 0)}, nil
	}

	if w.count >= ceiling {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: w.startAt.Add(l.window).Sub(now),
		}, nil
	}

	w.count++
	return Decision{Allowed: true, Remaining: ceiling - w.count}, nil
}

// Sweep drops windows that have already elapsed and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if !now.Before(w.startAt.Add(l.window)) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked windows.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Run sweeps expired windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
