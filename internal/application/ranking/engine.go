// Package ranking joins disease and compound embedding spaces into a ranked
// match table.  Scoring runs in parallel across diseases; enrichment lookups
// are then made in disease order through one shared throttle.
package ranking

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// CompoundDirectory resolves compound display names.  ok is false when the
// compound is unknown or has no name.
type CompoundDirectory interface {
	DisplayName(id string) (name string, ok bool)
}

// Engine is the similarity ranking engine.
type Engine struct {
	enricher    *Enricher
	parallelism int
	metrics     *prometheus.PipelineMetrics
	logger      logging.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithParallelism bounds the number of diseases scored at once.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithEngineMetrics sets the metrics sink.
func WithEngineMetrics(m *prometheus.PipelineMetrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// NewEngine creates an Engine.  A nil enricher gives every match a count of 0.
func NewEngine(enricher *Enricher, logger logging.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if enricher == nil {
		enricher = NewEnricher(nil, logger)
	}
	e := &Engine{
		enricher:    enricher,
		parallelism: 4,
		metrics:     prometheus.NewNopPipelineMetrics(),
		logger:      logger.Named("ranking"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Enricher returns the engine's enricher.
func (e *Engine) Enricher() *Enricher { return e.enricher }

// Rank returns up to topN matches per disease, diseases in input order and
// matches by descending score.  Empty inputs yield no matches; vectors of
// different dimension are a configuration error.
func (e *Engine) Rank(ctx context.Context, diseases, compounds *domain.EmbeddingSet, metadata CompoundDirectory, topN int) ([]domain.MatchRecord, error) {
	if topN < 1 {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "top-n must be >= 1, got %d", topN)
	}
	if diseases == nil || compounds == nil || diseases.Len() == 0 || compounds.Len() == 0 {
		e.logger.Warn("nothing to rank",
			logging.Int("diseases", diseases.Len()), logging.Int("compounds", compounds.Len()))
		return []domain.MatchRecord{}, nil
	}
	if diseases.Dim() != compounds.Dim() {
		return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
			"disease vectors have dimension %d, compound vectors %d", diseases.Dim(), compounds.Dim())
	}

	start := time.Now()
	selected, err := e.score(ctx, diseases, compounds, topN)
	if err != nil {
		return nil, err
	}
	e.metrics.ObservePhase("scoring", time.Since(start))
	e.logger.Info("scoring finished",
		logging.Int("diseases", diseases.Len()),
		logging.Int("compounds", compounds.Len()),
		logging.Duration("elapsed", time.Since(start)))

	start = time.Now()
	out := make([]domain.MatchRecord, 0, diseases.Len()*min(topN, compounds.Len()))
	for i, cands := range selected {
		disease := diseases.Key(i)
		for pos, c := range cands {
			id := compounds.Key(c.Index)
			name := domain.UnknownName
			if metadata != nil {
				if n, ok := metadata.DisplayName(id); ok {
					name = n
				}
			}
			count, err := e.enricher.Count(ctx, name)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCancelled, "ranking interrupted")
			}
			out = append(out, domain.MatchRecord{
				Disease:      disease,
				Rank:         pos + 1,
				CompoundID:   id,
				CompoundName: name,
				Similarity:   c.Score,
				Enrichment:   count,
			})
		}
		e.metrics.DiseasesRankedTotal.WithLabelValues().Inc()
		e.logger.Debug("disease ranked", logging.String("disease", disease), logging.Int("matches", len(cands)))
	}
	e.metrics.ObservePhase("enrichment", time.Since(start))
	return out, nil
}

// score selects the top candidates for every disease in parallel.  The
// result is indexed like diseases.
func (e *Engine) score(ctx context.Context, diseases, compounds *domain.EmbeddingSet, topN int) ([][]domain.Candidate, error) {
	scorer := domain.NewScorer(compounds)
	selected := make([][]domain.Candidate, diseases.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := 0; i < diseases.Len(); i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			selected[i] = domain.TopN(scorer.Scores(diseases.Vector(i)), topN)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "scoring interrupted")
	}
	return selected, nil
}

//Personal.AI order the ending
