package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrExhausted is returned when every attempt failed with a retryable error.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy is a bounded retry policy. Sleep is injectable so callers can test
// without real delays.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(err error) bool
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Linear returns a back-off of base × attempt.
func Linear(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// FromBackOff adapts a backoff.BackOff to a Policy back-off. The sequence is
// reset on the first attempt so a policy can be reused across Do calls.
func FromBackOff(b backoff.BackOff) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt <= 1 {
			b.Reset()
		}
		d := b.NextBackOff()
		if d == backoff.Stop {
			return 0
		}
		return d
	}
}

// Exponential returns a capped exponential back-off starting at initial.
// The jitter factor is applied around each interval.
func Exponential(initial, maxInterval time.Duration, jitter float64) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.MaxInterval = maxInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = jitter
	return bo
}

// Always treats every error as retryable.
func Always(error) bool { return true }

// RateLimited classifies errors whose message carries a rate-limit indicator.
func RateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts run out. The attempt number passed to fn starts at 1. A sleep only
// happens when another attempt follows.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = RateLimited
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		last = err

		if attempt == attempts {
			break
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return fmt.Errorf("retry wait: %w", serr)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, last)
}
