package invitations

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds retries of transient repository reads.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is three tries starting at 50ms.
var DefaultRetryPolicy = RetryPolicy{MaxTries: 3, InitialInterval: 50 * time.Millisecond, MaxInterval: 500 * time.Millisecond}

// retryRead runs op until it succeeds, returns one of the permanent errors,
// or the policy is exhausted. Context errors are never retried.
func retryRead[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error), permanent ...error) (T, error) {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         p.MaxInterval,
	}
	tries := p.MaxTries
	if tries == 0 {
		tries = 1
	}
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return v, backoff.Permanent(err)
		}
		for _, p := range permanent {
			if errors.Is(err, p) {
				return v, backoff.Permanent(err)
			}
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
}
