// Package retrylimit paces outbound platform calls: an adaptive rate
// limiter that speeds up on success and backs off on failures, plus a
// retry wrapper with exponential backoff. Works with any error type; errors
// wrapped in Fatal stop retries immediately.
package retrylimit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter manages a request rate that adjusts to outcomes: each
// success nudges it up, each throttled or failed call cuts it down. Safe for
// concurrent use.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, bounded by [floor, ceil]. stepUp is added on success; stepDown
// multiplies the rate on failure (e.g. 0.5 halves it).
func NewAdaptiveLimiter(initial, floor, ceil, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if floor < 1 {
		floor = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, max(1, int(initial))),
		minLimit: floor,
		maxLimit: ceil,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate, but only once the limiter has been error-free
// for a while.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjust(a.limiter.Limit() + a.stepUp)
	}
}

// Throttled cuts the rate after a failure or an explicit server throttle.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(next rate.Limit) {
	if next > a.maxLimit {
		next = a.maxLimit
	}
	if next < a.minLimit {
		next = a.minLimit
	}
	if next != a.limiter.Limit() {
		a.limiter.SetLimit(next)
		a.limiter.SetBurst(max(1, int(next)))
	}
}

// Fatal wraps an error that must not be retried.
type Fatal struct {
	Err error
}

func (f *Fatal) Error() string { return f.Err.Error() }
func (f *Fatal) Unwrap() error { return f.Err }

// Config tunes the retry loop.
type Config struct {
	MaxAttempts  int           // hard cap; 0 means DefaultConfig's cap
	InitialDelay time.Duration // first backoff interval
	MaxDelay     time.Duration // backoff ceiling
	Multiplier   float64       // backoff growth factor
	Jitter       bool          // randomize delays to avoid herding
	OnRetry      func(attempt int, err error)
}

// DefaultConfig returns the tuning used for platform sends.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry runs fn under the limiter with default tuning. See WithConfig.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter) error {
	return WithConfig(ctx, fn, lim, DefaultConfig())
}

// WithConfig runs fn with backoff until it succeeds, returns a *Fatal
// error, the context ends, or attempts run out. Every failure lowers the
// limiter's rate; every success raises it.
func WithConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg Config) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err

		var fatal *Fatal
		if f, ok := err.(*Fatal); ok {
			fatal = f
		}
		if fatal != nil {
			return fatal.Err
		}

		if lim != nil {
			lim.Throttled()
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		next := delay
		if cfg.Jitter && delay > 0 {
			next += time.Duration(rand.Int63n(int64(delay/4) + 1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(next):
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("max attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}
