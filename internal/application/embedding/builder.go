// Package embedding turns the compound dataset and the disease list into the
// two embedding files consumed by ranking.
package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	"github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OrphaMine/internal/pipeline"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// Embedder maps text to a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Item is one key and the text embedded for it.
type Item struct {
	Key  string
	Text string
}

// BuildStats summarizes a build.
type BuildStats struct {
	Requested int
	Embedded  int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Builder embeds items through a bounded worker pool.
type Builder struct {
	embedder    Embedder
	kind        string
	concurrency int
	timeout     time.Duration
	metrics     *prometheus.PipelineMetrics
	logger      logging.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithConcurrency sets the number of in-flight embedding calls.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithTimeout bounds each embedding call.
func WithTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *prometheus.PipelineMetrics) BuilderOption {
	return func(b *Builder) {
		if m != nil {
			b.metrics = m
		}
	}
}

// NewBuilder creates a Builder; kind ("compound" or "disease") labels logs
// and metrics.
func NewBuilder(embedder Embedder, kind string, logger logging.Logger, opts ...BuilderOption) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	b := &Builder{
		embedder:    embedder,
		kind:        kind,
		concurrency: 4,
		timeout:     60 * time.Second,
		metrics:     prometheus.NewNopPipelineMetrics(),
		logger:      logger.Named("embedding").With(logging.String("kind", kind)),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build embeds items and returns the resulting set in input order.  Items
// with blank text, repeated keys or a failed embedding are left out with
// their key.  Vectors of differing dimension are a configuration error.
func (b *Builder) Build(ctx context.Context, items []Item) (*ranking.EmbeddingSet, *BuildStats, error) {
	start := time.Now()
	stats := &BuildStats{Requested: len(items)}

	work := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		key := strings.TrimSpace(it.Key)
		text := strings.TrimSpace(it.Text)
		if _, dup := seen[key]; key == "" || text == "" || dup {
			stats.Skipped++
			b.metrics.EmbeddingsTotal.WithLabelValues(b.kind, prometheus.OutcomeSkipped).Inc()
			continue
		}
		seen[key] = struct{}{}
		work = append(work, Item{Key: key, Text: text})
	}

	bp := pipeline.NewBatchProcessor[Item, []float64](
		pipeline.WithMaxConcurrency(b.concurrency),
		pipeline.WithItemTimeout(b.timeout),
	)
	br, err := bp.Process(ctx, work, func(ctx context.Context, it Item) ([]float64, error) {
		return b.embedder.Embed(ctx, it.Text)
	})
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeCancelled, "embedding interrupted")
	}

	keys := make([]string, 0, br.SuccessCount)
	vectors := make([][]float64, 0, br.SuccessCount)
	for _, r := range br.Results {
		it := work[r.Index]
		if r.Status != pipeline.ItemStatusSuccess {
			stats.Failed++
			b.metrics.EmbeddingsTotal.WithLabelValues(b.kind, prometheus.OutcomeRejected).Inc()
			b.logger.Warn("embedding failed, dropping key",
				logging.String("key", it.Key),
				logging.String("status", r.Status.String()),
				logging.Err(r.Error))
			continue
		}
		keys = append(keys, it.Key)
		vectors = append(vectors, r.Result)
		b.metrics.EmbeddingsTotal.WithLabelValues(b.kind, prometheus.OutcomeAccepted).Inc()
	}
	stats.Embedded = len(keys)

	set, err := ranking.NewEmbeddingSet(keys, vectors)
	if err != nil {
		return nil, nil, err
	}
	stats.Duration = time.Since(start)
	b.logger.Info("embeddings built",
		logging.Int("requested", stats.Requested),
		logging.Int("embedded", stats.Embedded),
		logging.Int("failed", stats.Failed),
		logging.Int("skipped", stats.Skipped),
		logging.Int("dimension", set.Dim()),
		logging.Duration("elapsed", stats.Duration))
	return set, stats, nil
}

// CompoundItems keys each compound by identifier and embeds its SMILES.
func CompoundItems(records []*molecule.Molecule) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = Item{Key: r.ChEMBLID, Text: r.SMILES}
	}
	return items
}

// DiseaseItems embeds each disease name under itself.
func DiseaseItems(names []string) []Item {
	items := make([]Item, len(names))
	for i, n := range names {
		items[i] = Item{Key: n, Text: n}
	}
	return items
}

//Personal.AI order the ending
