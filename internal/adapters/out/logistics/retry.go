package logistics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shipping/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retries of transient provider failures.
type RetryPolicy struct {
	Attempts   int
	BaseDelay  time.Duration
	Multiplier float64
	// Jitter is the randomization factor applied to every delay, 0.2 meaning ±20%.
	Jitter   float64
	MaxDelay time.Duration
}

// DefaultRetryPolicy makes three attempts starting at 500ms, doubling with ±20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:   3,
		BaseDelay:  500 * time.Millisecond,
		Multiplier: 2,
		Jitter:     0.2,
		MaxDelay:   5 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxInterval = p.MaxDelay
	b.MaxElapsedTime = 0

	retries := max(p.Attempts-1, 0)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// run calls fn until it succeeds, fails with a non-retryable error or the
// attempts are used up.
func (p RetryPolicy) run(ctx context.Context, operation string, logger *slog.Logger, fn func() error) error {
	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			err := fn()
			if err != nil && !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		p.backOff(ctx),
		func(err error, wait time.Duration) {
			logger.WarnContext(ctx, "Provider call failed, retrying",
				"operation", operation,
				"attempt", attempt,
				"wait", wait.String(),
				"error", err,
			)
		},
	)
}

// retryable excludes ambiguous failures: the write may have been applied.
func retryable(err error) bool {
	var pe *errs.ProviderError
	return errors.As(err, &pe) && pe.Retryable && !pe.Ambiguous
}
