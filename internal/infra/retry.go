package infra

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retries around a blocking provider call.
type RetryPolicy struct {
	MaxRetries      int           // retries after the first attempt
	AttemptTimeout  time.Duration // per-attempt deadline, 0 = none
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns 3 retries with exponential backoff and a 30s attempt timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		AttemptTimeout:  30 * time.Second,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Retry runs op until it succeeds, returns a permanent error, the retry
// budget is spent or ctx is done. notify may be nil.
func Retry[T any](ctx context.Context, p RetryPolicy, permanent func(error) bool, op func(ctx context.Context) (T, error), notify func(err error, wait time.Duration)) (T, error) {
	var out T

	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	operation := func() error {
		actx, cancel := ctx, context.CancelFunc(func() {})
		if p.AttemptTimeout > 0 {
			actx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		defer cancel()

		v, err := op(actx)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if permanent != nil && permanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = v
		return nil
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
