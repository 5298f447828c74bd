// Package pipeline provides the concurrency and resilience primitives shared
// by the ingestion, embedding and ranking services: explicit retry policies
// with a generic call-with-policy wrapper, a bounded worker pool with a
// completion barrier, and a process-wide call throttle.
package pipeline

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ---------------------------------------------------------------------------
// RetryPolicy
// ---------------------------------------------------------------------------

// RetryPolicy is an immutable description of how one logical call is
// retried.  Each invocation of Retry builds fresh backoff state from it, so a
// policy value can be shared freely between call sites and goroutines.
type RetryPolicy struct {
	Name string `json:"name" yaml:"name"`

	// MaxAttempts bounds the total number of attempts.  0 means unbounded:
	// the call is repeated until it succeeds or ctx is done.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	InitialBackoff    time.Duration `json:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff        time.Duration `json:"max_backoff" yaml:"max_backoff"`
	BackoffMultiplier float64       `json:"backoff_multiplier" yaml:"backoff_multiplier"`

	// Jitter is the randomization factor in [0,1); 0 gives exact delays.
	Jitter float64 `json:"jitter" yaml:"jitter"`

	// Retryable classifies errors; nil treats every error as retryable.
	Retryable func(error) bool `json:"-" yaml:"-"`
}

// UnboundedExponential returns a policy that never gives up, doubling (by
// multiplier) from initial up to max between attempts.
func UnboundedExponential(name string, initial, max time.Duration, multiplier float64) RetryPolicy {
	return RetryPolicy{
		Name:              name,
		MaxAttempts:       0,
		InitialBackoff:    initial,
		MaxBackoff:        max,
		BackoffMultiplier: multiplier,
	}
}

// FixedInterval returns a policy with at most attempts tries, waiting
// interval between consecutive tries.
func FixedInterval(name string, attempts int, interval time.Duration) RetryPolicy {
	return RetryPolicy{
		Name:              name,
		MaxAttempts:       attempts,
		InitialBackoff:    interval,
		MaxBackoff:        interval,
		BackoffMultiplier: 1,
	}
}

// Unbounded reports whether the policy retries forever.
func (p RetryPolicy) Unbounded() bool { return p.MaxAttempts <= 0 }

// newBackOff builds the per-call backoff state.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialBackoff
	eb.MaxInterval = p.MaxBackoff
	if eb.MaxInterval < eb.InitialInterval {
		eb.MaxInterval = eb.InitialInterval
	}
	eb.Multiplier = p.BackoffMultiplier
	if eb.Multiplier < 1 {
		eb.Multiplier = 1
	}
	eb.RandomizationFactor = p.Jitter
	eb.MaxElapsedTime = 0
	eb.Reset()

	var b backoff.BackOff = eb
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

// ---------------------------------------------------------------------------
// Call with policy
// ---------------------------------------------------------------------------

// RetryNotify observes a failed attempt before the wait that precedes the
// next one.  attempt is 1-based.
type RetryNotify func(err error, attempt int, next time.Duration)

// RetryWithData invokes op under policy p.  It returns the first successful
// value, the last error when attempts are exhausted or the error is not
// retryable, and ctx.Err() when the context ends while waiting.
func RetryWithData[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error), notify RetryNotify) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	var n backoff.Notify
	if notify != nil {
		n = func(err error, next time.Duration) { notify(err, attempt, next) }
	}
	return backoff.RetryNotifyWithData[T](operation, p.newBackOff(ctx), n)
}

//Personal.AI order the ending
