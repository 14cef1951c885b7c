package importer

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a non-fatal side write is retried.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Backoff:    100 * time.Millisecond,
	}
}

// Do runs fn until it succeeds or the retries are used up. The backoff grows
// linearly with the attempt number. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	err := fn()
	for attempt := 1; err != nil && attempt <= p.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * p.Backoff):
		}
		err = fn()
	}
	return err
}
