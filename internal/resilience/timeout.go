package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that a single outbound call ran past its deadline.
type TimeoutError struct {
	Op    string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.After)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if err or any error in its chain is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// WithTimeout runs fn under a context bounded by d. When the deadline
// expires (and the parent context is still live) the error is reported as
// a *TimeoutError naming op. A non-positive d runs fn with ctx unchanged.
func WithTimeout[T any](ctx context.Context, op string, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	v, err := fn(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return v, &TimeoutError{Op: op, After: d, Err: err}
	}
	return v, err
}
