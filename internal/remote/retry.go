// Package remote holds the synchronous HTTP plumbing the services use to call
// each other: a fixed-count retry combinator and a credentialed client.
package remote

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
)

// RetryPolicy is a fixed attempt count with a fixed delay between attempts.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
}

// DefaultRetryPolicy makes two attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 2, Delay: time.Second, Clock: clock.WallClock}
}

// Retry calls fn until it succeeds, fails with an error retryable rejects, the
// policy runs out of attempts, or ctx is done. It returns the number of
// attempts made and the last error from fn. notify may be nil.
func Retry(ctx context.Context, policy RetryPolicy, retryable func(error) bool, notify func(err error, attempt int), fn func() error) (int, error) {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Delay <= 0 {
		policy.Delay = time.Millisecond
	}
	if policy.Clock == nil {
		policy.Clock = clock.WallClock
	}

	attempts := 0
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			attempts++
			return fn()
		},
		IsFatalError: func(err error) bool {
			return !retryable(err)
		},
		NotifyFunc: func(err error, attempt int) {
			if notify != nil && attempt < policy.Attempts {
				notify(err, attempt)
			}
		},
		Attempts: policy.Attempts,
		Delay:    policy.Delay,
		Clock:    policy.Clock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		return attempts, retry.LastError(err)
	}
	return attempts, nil
}
