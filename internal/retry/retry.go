package retry

import (
	"context"
	"time"

	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/domain/review"
)

// Policy is a bounded exponential backoff applied to external calls. Only
// errors the domain marks transient are retried; anything else returns
// immediately so invalid input never burns attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Default matches the pipeline's per-record budget.
func Default() Policy {
	return Policy{MaxAttempts: config.RetryMaxAttempts, BaseDelay: config.RetryBaseDelay, MaxDelay: config.RetryMaxDelay}
}

// Do runs op until it succeeds, fails non-transiently, exhausts attempts, or
// the context is cancelled. Returns the last error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !review.IsTransient(err) || attempt >= attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
