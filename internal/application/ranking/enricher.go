package ranking

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OrphaMine/internal/pipeline"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// CountLookup returns the popularity count for a compound name.
type CountLookup interface {
	Count(ctx context.Context, name string) (int, error)
}

// CountCache stores counts across runs.
type CountCache interface {
	Get(ctx context.Context, term string) (count int, hit bool, err error)
	Set(ctx context.Context, term string, count int) error
}

// Enricher resolves enrichment counts.  Every lookup call, across all
// diseases and goroutines, passes through one throttle; a failed lookup is
// retried under the enrichment policy and then degrades to 0.
type Enricher struct {
	lookup   CountLookup
	cache    CountCache
	throttle *pipeline.Throttle
	policy   pipeline.RetryPolicy
	metrics  *prometheus.PipelineMetrics
	logger   logging.Logger

	mu       sync.Mutex
	memo     map[string]int
	degraded atomic.Int64
	calls    atomic.Int64
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithCountCache adds a shared cache consulted before any lookup.
func WithCountCache(c CountCache) EnricherOption {
	return func(e *Enricher) { e.cache = c }
}

// WithMinInterval sets the minimum spacing between lookup calls.
func WithMinInterval(d time.Duration) EnricherOption {
	return func(e *Enricher) { e.throttle = pipeline.NewThrottle(d) }
}

// WithLookupPolicy replaces the enrichment retry policy.
func WithLookupPolicy(p pipeline.RetryPolicy) EnricherOption {
	return func(e *Enricher) { e.policy = p }
}

// WithEnricherMetrics sets the metrics sink.
func WithEnricherMetrics(m *prometheus.PipelineMetrics) EnricherOption {
	return func(e *Enricher) {
		if m != nil {
			e.metrics = m
		}
	}
}

// DefaultLookupPolicy makes at most 3 attempts, 1s apart.
func DefaultLookupPolicy() pipeline.RetryPolicy {
	return pipeline.FixedInterval("enrichment-lookup", 3, time.Second)
}

// NewEnricher creates an Enricher.  A nil lookup disables enrichment and
// every count is 0.
func NewEnricher(lookup CountLookup, logger logging.Logger, opts ...EnricherOption) *Enricher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &Enricher{
		lookup:   lookup,
		throttle: pipeline.NewThrottle(350 * time.Millisecond),
		policy:   DefaultLookupPolicy(),
		metrics:  prometheus.NewNopPipelineMetrics(),
		logger:   logger.Named("enricher"),
		memo:     make(map[string]int),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Count returns the enrichment count for name.  The only error is the end of
// ctx; lookup failures yield 0, and a name that degraded is not looked up
// again by the same Enricher.
func (e *Enricher) Count(ctx context.Context, name string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if e.lookup == nil || domain.IsUnknownName(name) {
		e.metrics.EnrichmentLookups.WithLabelValues(prometheus.LookupSkipped).Inc()
		return 0, nil
	}
	term := strings.TrimSpace(name)

	e.mu.Lock()
	n, ok := e.memo[term]
	e.mu.Unlock()
	if ok {
		e.metrics.EnrichmentLookups.WithLabelValues(prometheus.LookupCached).Inc()
		return n, nil
	}

	if e.cache != nil {
		cached, hit, err := e.cache.Get(ctx, term)
		switch {
		case err != nil:
			e.logger.Warn("enrichment cache read failed", logging.String("term", term), logging.Err(err))
		case hit:
			e.remember(term, cached)
			e.metrics.EnrichmentLookups.WithLabelValues(prometheus.LookupCached).Inc()
			return cached, nil
		}
	}

	notify := func(err error, attempt int, next time.Duration) {
		e.metrics.EnrichmentRetries.WithLabelValues().Inc()
		e.logger.Debug("enrichment lookup failed, retrying",
			logging.String("term", term), logging.Int("attempt", attempt),
			logging.Duration("backoff", next), logging.Err(err))
	}
	count, err := pipeline.RetryWithData(ctx, e.policy, func(ctx context.Context) (int, error) {
		if err := e.throttle.Wait(ctx); err != nil {
			return 0, err
		}
		e.calls.Add(1)
		return e.lookup.Count(ctx, term)
	}, notify)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		// Remembered for this run only; the shared cache never holds a degraded zero.
		e.remember(term, 0)
		e.degraded.Add(1)
		e.metrics.EnrichmentLookups.WithLabelValues(prometheus.LookupDegraded).Inc()
		e.logger.Warn("enrichment degraded to zero",
			logging.String("term", term),
			logging.Err(errors.Wrap(err, errors.ErrCodeEnrichmentDegraded, "lookup retries exhausted")))
		return 0, nil
	}

	e.remember(term, count)
	e.metrics.EnrichmentLookups.WithLabelValues(prometheus.LookupSuccess).Inc()
	if e.cache != nil {
		if err := e.cache.Set(ctx, term, count); err != nil {
			e.logger.Warn("enrichment cache write failed", logging.String("term", term), logging.Err(err))
		}
	}
	return count, nil
}

func (e *Enricher) remember(term string, count int) {
	e.mu.Lock()
	e.memo[term] = count
	e.mu.Unlock()
}

// Degraded returns how many lookups have degraded to 0 so far.
func (e *Enricher) Degraded() int { return int(e.degraded.Load()) }

// Calls returns how many lookup calls have been made, retries included.
func (e *Enricher) Calls() int { return int(e.calls.Load()) }

//Personal.AI order the ending
