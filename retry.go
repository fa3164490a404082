package notepages

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds how often a page is rasterized before falling back to
// a placeholder. The wait before attempt n+1 is Delay * Backoff^(n-1).
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // wait after the first failure
	Backoff     float64       // delay multiplier per further failure; 1 keeps it fixed
}

// DefaultRetryPolicy allows three attempts 200ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 200 * time.Millisecond, Backoff: 1}
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts %d (must be at least 1)", ErrInvalidRetryPolicy, p.MaxAttempts)
	}
	if p.Delay < 0 {
		return fmt.Errorf("%w: negative delay %s", ErrInvalidRetryPolicy, p.Delay)
	}
	if p.Backoff < 1 {
		return fmt.Errorf("%w: backoff %.2f (must be at least 1)", ErrInvalidRetryPolicy, p.Backoff)
	}
	return nil
}

// Do calls fn until it succeeds, the attempts are used up or ctx is done.
// It returns nil on success, otherwise the last error from fn or ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := max(p.MaxAttempts, 1)
	delay := p.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err == nil {
				return ctxErr
			}
			return fmt.Errorf("%w (after: %v)", ctxErr, err)
		}

		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%w (after: %v)", ctx.Err(), err)
			case <-timer.C:
			}
		}
		if p.Backoff > 1 {
			delay = time.Duration(float64(delay) * p.Backoff)
		}
	}
	return err
}
