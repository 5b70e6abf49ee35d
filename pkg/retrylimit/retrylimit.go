// Package retrylimit paces calls to a rate limited API and retries the ones
// that fail transiently.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultConfig(), func() error {
//	    return doSomeWork()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket whose rate grows while calls succeed and
// is cut in half whenever the remote side pushes back. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	lo, hi       rate.Limit
	stepUp       rate.Limit
	cooldown     time.Duration
	lastThrottle time.Time
}

// NewAdaptiveLimiter returns a limiter starting at initial calls per second and
// kept within [lo, hi]. Burst is always 1.
func NewAdaptiveLimiter(initial, lo, hi rate.Limit) *AdaptiveLimiter {
	if lo <= 0 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	initial = clamp(initial, lo, hi)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, 1),
		lo:       lo,
		hi:       hi,
		stepUp:   1,
		cooldown: 10 * time.Second,
	}
}

// Wait blocks until a call is allowed or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate by one step, unless the limiter was throttled recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastThrottle) > a.cooldown {
		a.limiter.SetLimit(clamp(a.limiter.Limit()+a.stepUp, a.lo, a.hi))
	}
}

// Throttle halves the rate.
func (a *AdaptiveLimiter) Throttle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastThrottle = time.Now()
	a.limiter.SetLimit(clamp(a.limiter.Limit()/2, a.lo, a.hi))
}

// Limit returns the current calls per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func clamp(l, lo, hi rate.Limit) rate.Limit {
	return max(lo, min(l, hi))
}

// ErrMaxAttempts is returned (joined with the last failure) when every attempt failed.
var ErrMaxAttempts = errors.New("max attempts exceeded")

// Config controls Do.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	// Retryable reports whether a failure is transient. Nil retries nothing.
	Retryable func(error) bool
	// Throttled reports whether a failure means the caller is going too fast;
	// the limiter is slowed down when it does.
	Throttled func(error) bool
	OnRetry   func(attempt int, delay time.Duration, err error)
}

// DefaultConfig retries up to five times with exponential backoff from 500ms.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// Do calls fn until it succeeds, fails with a non-retryable error, runs out
// of attempts or ctx is done. Each attempt waits on lim first when lim is set.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		if err = fn(); err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		if cfg.Retryable == nil || !cfg.Retryable(err) {
			return err
		}
		if lim != nil && cfg.Throttled != nil && cfg.Throttled(err) {
			lim.Throttle()
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if cfg.Jitter {
			wait = addJitter(wait)
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, err)
}

// addJitter adds up to 25% to delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}
