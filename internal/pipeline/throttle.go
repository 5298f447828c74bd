package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces calls to a shared external service.  Wait blocks until the
// caller may proceed; no lock is held while waiting or while the caller then
// performs its call.
type Throttle struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewThrottle enforces at least minInterval between consecutive Wait
// returns.  A non-positive interval disables throttling.
func NewThrottle(minInterval time.Duration) *Throttle {
	if minInterval <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(minInterval), 1), interval: minInterval}
}

// Wait blocks until the next call is allowed or ctx ends.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Interval returns the configured minimum spacing.
func (t *Throttle) Interval() time.Duration { return t.interval }

//Personal.AI order the ending
