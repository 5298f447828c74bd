// Package ingestion builds the compound dataset from the remote catalog.
// The Fetcher pages through the catalog one listing call at a time, fetches
// unseen records through a bounded worker pool and commits each page's
// accepted records as one durable chunk.  The set of committed identifiers is
// always derived from the dataset itself, so an interrupted run resumes
// without re-fetching or duplicating anything.
package ingestion

import (
	"context"
	stdliberrors "errors"
	"time"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	"github.com/turtacn/OrphaMine/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OrphaMine/internal/pipeline"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// CatalogClient is the remote compound catalog.
type CatalogClient interface {
	// ListPage returns up to limit identifiers starting at offset.  An
	// empty page marks the end of the catalog.
	ListPage(ctx context.Context, limit, offset int) ([]string, error)
	// FetchDetail returns one validated record.
	FetchDetail(ctx context.Context, id string) (*molecule.Molecule, error)
}

// DatasetStore is the append-only dataset the fetcher writes to.
type DatasetStore interface {
	LoadCheckpoint(ctx context.Context) (*molecule.CheckpointSet, error)
	AppendChunk(ctx context.Context, records []*molecule.Molecule) error
}

// EventPublisher receives pipeline events.  Publication is best effort.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event kafka.Event) error
}

// IngestRequest carries the per-run parameters.
type IngestRequest struct {
	TargetCount int
	PageSize    int
	Concurrency int
}

// IngestResult summarizes a run.  Written counts every record in the dataset,
// including those present before the run started; Added counts only this
// run's commits.
type IngestResult struct {
	Written   int
	Added     int
	Pages     int
	Rejected  int
	Skipped   int
	Offset    int
	Exhausted bool
}

// Fetcher is the checkpointed parallel fetcher.
type Fetcher struct {
	catalog CatalogClient
	dataset DatasetStore
	events  EventPublisher
	metrics *prometheus.PipelineMetrics
	logger  logging.Logger

	listingPolicy pipeline.RetryPolicy
	detailTimeout time.Duration
	runID         string
	datasetPath   string
	now           func() time.Time
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithListingPolicy replaces the retry policy used for listing calls.
func WithListingPolicy(p pipeline.RetryPolicy) FetcherOption {
	return func(f *Fetcher) { f.listingPolicy = p }
}

// WithDetailTimeout bounds each detail fetch.
func WithDetailTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.detailTimeout = d
		}
	}
}

// WithEventPublisher enables chunk and completion events.
func WithEventPublisher(p EventPublisher) FetcherOption {
	return func(f *Fetcher) { f.events = p }
}

// WithMetrics sets the metrics the fetcher records into.
func WithMetrics(m *prometheus.PipelineMetrics) FetcherOption {
	return func(f *Fetcher) {
		if m != nil {
			f.metrics = m
		}
	}
}

// WithRunID tags logs and events with id.
func WithRunID(id string) FetcherOption {
	return func(f *Fetcher) { f.runID = id }
}

// WithDatasetPath is reported in published events.
func WithDatasetPath(path string) FetcherOption {
	return func(f *Fetcher) { f.datasetPath = path }
}

// DefaultListingPolicy retries a listing call forever, starting at 5s and
// doubling up to two minutes.
func DefaultListingPolicy() pipeline.RetryPolicy {
	p := pipeline.UnboundedExponential("catalog-listing", 5*time.Second, 2*time.Minute, 2)
	p.Retryable = errors.IsRetryable
	return p
}

// NewFetcher creates a Fetcher over catalog and dataset.
func NewFetcher(catalog CatalogClient, dataset DatasetStore, logger logging.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	f := &Fetcher{
		catalog:       catalog,
		dataset:       dataset,
		metrics:       prometheus.NewNopPipelineMetrics(),
		logger:        logger.Named("fetcher"),
		listingPolicy: DefaultListingPolicy(),
		detailTimeout: 10 * time.Second,
		now:           time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	if f.runID != "" {
		f.logger = f.logger.With(logging.String(logging.KeyRunID, f.runID))
	}
	return f
}

// Ingest grows the dataset until it holds at least req.TargetCount records or
// the catalog is exhausted.  checkpoint is the set of identifiers already in
// the dataset; when nil it is loaded from the dataset.  Ingest takes
// ownership of checkpoint and adds each identifier only after the chunk
// holding it has been written.
//
// When ctx ends the result reflects the last committed chunk and the error
// is a COMMON_018 error wrapping ctx.Err().
func (f *Fetcher) Ingest(ctx context.Context, req IngestRequest, checkpoint *molecule.CheckpointSet) (*IngestResult, error) {
	if req.TargetCount < 1 || req.PageSize < 1 || req.Concurrency < 1 {
		return nil, errors.Newf(errors.ErrCodeConfiguration,
			"invalid ingest request: target=%d page_size=%d concurrency=%d",
			req.TargetCount, req.PageSize, req.Concurrency)
	}
	if checkpoint == nil {
		var err error
		if checkpoint, err = f.dataset.LoadCheckpoint(ctx); err != nil {
			return nil, err
		}
	}

	res := &IngestResult{Written: checkpoint.Len(), Offset: checkpoint.Len()}
	f.metrics.DatasetRecords.WithLabelValues().Set(float64(res.Written))
	f.logger.Info("ingest started",
		logging.Int("target", req.TargetCount),
		logging.Int("page_size", req.PageSize),
		logging.Int("concurrency", req.Concurrency),
		logging.Int("checkpointed", res.Written))

	batch := pipeline.NewBatchProcessor[string, *molecule.Molecule](
		pipeline.WithMaxConcurrency(req.Concurrency),
		pipeline.WithItemTimeout(f.detailTimeout),
	)

	for res.Written < req.TargetCount {
		ids, err := f.listPage(ctx, req.PageSize, res.Offset)
		if err != nil {
			return f.stopped(ctx, res, err)
		}
		if len(ids) == 0 {
			res.Exhausted = true
			f.logger.Info("catalog exhausted", logging.Int("offset", res.Offset))
			break
		}
		res.Pages++
		f.metrics.PagesListedTotal.WithLabelValues().Inc()

		fresh := f.unseen(ids, checkpoint)
		res.Skipped += len(ids) - len(fresh)

		accepted, rejected, err := f.fetchDetails(ctx, batch, fresh, checkpoint)
		if err != nil {
			return f.stopped(ctx, res, err)
		}
		res.Rejected += rejected

		if err := f.commit(ctx, accepted, checkpoint); err != nil {
			return f.stopped(ctx, res, err)
		}
		res.Written += len(accepted)
		res.Added += len(accepted)
		chunkOffset := res.Offset
		res.Offset += req.PageSize

		f.logger.Info("chunk committed",
			logging.Int("offset", chunkOffset),
			logging.Int("accepted", len(accepted)),
			logging.Int("rejected", rejected),
			logging.Int("written", res.Written),
			logging.Int("target", req.TargetCount))
		if len(accepted) > 0 {
			f.publish(ctx, molecule.ChunkCommittedEvent{
				RunID:       f.runID,
				DatasetPath: f.datasetPath,
				Offset:      chunkOffset,
				Accepted:    len(accepted),
				Rejected:    rejected,
				Written:     res.Written,
				Target:      req.TargetCount,
				IDs:         idsOf(accepted),
				CommittedAt: f.now().UTC(),
			})
		}
	}

	f.logger.Info("ingest finished",
		logging.Int("written", res.Written),
		logging.Int("added", res.Added),
		logging.Int("rejected", res.Rejected),
		logging.Bool("exhausted", res.Exhausted))
	f.publish(ctx, molecule.IngestFinishedEvent{
		RunID:      f.runID,
		Written:    res.Written,
		Added:      res.Added,
		Target:     req.TargetCount,
		Exhausted:  res.Exhausted,
		FinishedAt: f.now().UTC(),
	})
	return res, nil
}

// listPage retries the listing call under the listing policy.  Only a
// non-retryable error or the end of ctx stops it.
func (f *Fetcher) listPage(ctx context.Context, limit, offset int) ([]string, error) {
	notify := func(err error, attempt int, next time.Duration) {
		f.metrics.ListingRetriesTotal.WithLabelValues().Inc()
		f.logger.Warn("listing failed, retrying",
			logging.Int("offset", offset),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", next),
			logging.Err(err))
	}
	return pipeline.RetryWithData(ctx, f.listingPolicy, func(ctx context.Context) ([]string, error) {
		return f.catalog.ListPage(ctx, limit, offset)
	}, notify)
}

// unseen drops identifiers already committed and repeats within the page.
func (f *Fetcher) unseen(ids []string, checkpoint *molecule.CheckpointSet) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if checkpoint.Contains(id) {
			f.metrics.RecordsTotal.WithLabelValues(prometheus.OutcomeSkipped).Inc()
			continue
		}
		if _, dup := seen[id]; dup {
			f.metrics.RecordsTotal.WithLabelValues(prometheus.OutcomeSkipped).Inc()
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// fetchDetails runs one detail fetch per identifier and waits for all of
// them.  Failed fetches are rejections.  Records are deduplicated by the
// identifier the catalog returned, which may differ from the requested one.
func (f *Fetcher) fetchDetails(ctx context.Context, batch *pipeline.BatchProcessor[string, *molecule.Molecule], ids []string, checkpoint *molecule.CheckpointSet) ([]*molecule.Molecule, int, error) {
	if len(ids) == 0 {
		return nil, 0, nil
	}
	br, err := batch.Process(ctx, ids, f.catalog.FetchDetail)
	if err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	accepted := make([]*molecule.Molecule, 0, br.SuccessCount)
	seen := make(map[string]struct{}, br.SuccessCount)
	rejected := 0
	for _, r := range br.Results {
		id := ids[r.Index]
		if r.Status != pipeline.ItemStatusSuccess {
			rejected++
			f.metrics.RecordsTotal.WithLabelValues(prometheus.OutcomeRejected).Inc()
			f.logger.Warn("record rejected",
				logging.String("id", id),
				logging.String("status", r.Status.String()),
				logging.Err(r.Error))
			continue
		}
		rec := r.Result
		if err := rec.Validate(); err != nil {
			rejected++
			f.metrics.RecordsTotal.WithLabelValues(prometheus.OutcomeRejected).Inc()
			f.logger.Warn("record rejected", logging.String("id", id), logging.Err(err))
			continue
		}
		if rec.ChEMBLID != id {
			// The requested id never enters the checkpoint, so resumed runs
			// fetch it again.
			f.logger.Info("catalog returned a different identifier",
				logging.String("requested", id), logging.String("returned", rec.ChEMBLID))
		}
		if _, dup := seen[rec.ChEMBLID]; dup || checkpoint.Contains(rec.ChEMBLID) {
			f.metrics.RecordsTotal.WithLabelValues(prometheus.OutcomeSkipped).Inc()
			f.logger.Debug("duplicate record dropped",
				logging.String("requested", id), logging.String("returned", rec.ChEMBLID))
			continue
		}
		seen[rec.ChEMBLID] = struct{}{}
		accepted = append(accepted, rec)
	}
	return accepted, rejected, nil
}

// slowChunkWrite is the chunk append time above which commit logs at WARN.
const slowChunkWrite = 5 * time.Second

// commit appends records as one chunk, then marks them checkpointed.
func (f *Fetcher) commit(ctx context.Context, records []*molecule.Molecule, checkpoint *molecule.CheckpointSet) error {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	timer := prometheus.NewTimer(f.metrics.ChunkWriteDuration.WithLabelValues())
	if err := f.dataset.AppendChunk(ctx, records); err != nil {
		if ctx.Err() != nil && stdliberrors.Is(err, ctx.Err()) {
			return err
		}
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "commit chunk of %d records", len(records))
	}
	timer.ObserveDuration()
	logging.LogOperationDuration(f.logger, "chunk write", start, slowChunkWrite)

	checkpoint.Add(idsOf(records)...)
	f.metrics.RecordsTotal.WithLabelValues(prometheus.OutcomeAccepted).Add(float64(len(records)))
	f.metrics.DatasetRecords.WithLabelValues().Set(float64(checkpoint.Len()))
	return nil
}

// stopped converts err into the run's terminal error.  Cancellation keeps the
// result so callers can report partial progress.
func (f *Fetcher) stopped(ctx context.Context, res *IngestResult, err error) (*IngestResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		f.logger.Warn("ingest interrupted",
			logging.Int("written", res.Written),
			logging.Int("added", res.Added),
			logging.Int("offset", res.Offset))
		return res, errors.Wrap(ctxErr, errors.ErrCodeCancelled, "ingest interrupted")
	}
	f.logger.Error("ingest aborted", logging.Int("written", res.Written), logging.Err(err))
	return res, err
}

func (f *Fetcher) publish(ctx context.Context, event kafka.Event) {
	if f.events == nil {
		return
	}
	if err := f.events.PublishEvent(context.WithoutCancel(ctx), event); err != nil {
		f.metrics.PublishFailuresTotal.WithLabelValues("kafka").Inc()
		f.logger.Warn("event publication failed",
			logging.String("event_type", event.EventType()), logging.Err(err))
	}
}

func idsOf(records []*molecule.Molecule) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ChEMBLID
	}
	return ids
}

//Personal.AI order the ending
