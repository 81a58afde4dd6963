package connector

import (
	"context"
	"time"
)

// retryConnect calls connectFn until it succeeds, the attempts in cfg are
// exhausted or ctx is done. The delay grows by cfg.Backoff (default 2) per
// attempt and is capped at cfg.MaxDelay when set.
func retryConnect(ctx context.Context, cfg *RetryConfig, connectFn func(context.Context) error, onRetry func(attempt int, delay time.Duration, err error)) error {
	delay := cfg.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	backoff := cfg.Backoff
	if backoff < 1 {
		backoff = 2
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if err = connectFn(ctx); err == nil {
			return nil
		}
		if attempt == cfg.MaxRetries {
			break
		}
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * backoff)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return err
}
