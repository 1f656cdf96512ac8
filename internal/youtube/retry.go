package youtube

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	// maxAttempts bounds every provider call: one initial attempt
	// plus three retries.
	maxAttempts = 4
	// baseInterval is the first backoff sleep; it doubles per retry
	// with randomized jitter.
	baseInterval = 800 * time.Millisecond
	// paceDelay is slept after every successful call to stay under
	// the provider's rate ceiling.
	paceDelay = 100 * time.Millisecond
)

// withRetry runs op with capped exponential backoff and jitter.
// Transient failures (5xx, quota, rate limits, backend errors) are
// retried up to maxAttempts; permanent failures propagate immediately.
// A successful call is followed by a fixed pacing delay.
func withRetry(ctx context.Context, name string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0.3
	b.MaxElapsedTime = 0 // the attempt cap bounds us, not wall time

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		log.Warn().Str("call", name).Int("attempt", attempt).Err(err).Msg("youtube: transient error, backing off")
		return err
	}

	err := backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx))
	if err != nil {
		return err
	}

	pace(ctx)
	return nil
}

// pace sleeps the fixed inter-call delay, returning early on
// cancellation.
func pace(ctx context.Context) {
	t := time.NewTimer(paceDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
