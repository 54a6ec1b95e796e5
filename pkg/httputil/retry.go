package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient fetch failure. After, when set, is the
// minimum wait the server asked for through Retry-After.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, fails with an error that is not a
// [RetryableError], or has run attempts times. The wait starts at delay and
// doubles, but never undercuts a RetryableError's After. The last error is
// returned, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		var re *RetryableError
		if err == nil || !errors.As(err, &re) || attempt >= attempts {
			return err
		}

		wait := max(delay, re.After)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
