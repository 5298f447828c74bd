package ranking

import (
	"context"
	"time"

	domain "github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OrphaMine/internal/infrastructure/storage/minio"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// ArtifactPublisher uploads a finished output file.
type ArtifactPublisher interface {
	Publish(ctx context.Context, runID, localPath string) (*minio.UploadResult, error)
}

// EventPublisher receives pipeline events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event kafka.Event) error
}

// RunRequest names the files of one ranking run.
type RunRequest struct {
	DiseaseEmbeddings  string
	CompoundEmbeddings string
	MetadataPath       string
	OutputPath         string
	TopN               int
	Precision          int
}

// RunResult summarizes a ranking run.
type RunResult struct {
	OutputPath  string
	ArtifactURI string
	Diseases    int
	Compounds   int
	Matches     int
	Degraded    int
	Records     []domain.MatchRecord
}

// Service runs the engine over files and writes the match table.
type Service struct {
	engine    *Engine
	artifacts ArtifactPublisher
	events    EventPublisher
	metrics   *prometheus.PipelineMetrics
	logger    logging.Logger
	runID     string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithArtifactPublisher uploads the match table after it is written.
func WithArtifactPublisher(p ArtifactPublisher) ServiceOption {
	return func(s *Service) { s.artifacts = p }
}

// WithEventPublisher publishes a completion event.
func WithEventPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithServiceMetrics sets the metrics sink.
func WithServiceMetrics(m *prometheus.PipelineMetrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRunID tags logs, artifacts and events.
func WithRunID(id string) ServiceOption {
	return func(s *Service) { s.runID = id }
}

// NewService creates a Service around engine.
func NewService(engine *Engine, logger logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		engine:  engine,
		metrics: prometheus.NewNopPipelineMetrics(),
		logger:  logger.Named("ranking-run"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.runID != "" {
		s.logger = s.logger.With(logging.String(logging.KeyRunID, s.runID))
	}
	return s
}

// Run loads the inputs, ranks, and writes the match table atomically.  Any
// missing input is a configuration error and nothing is written.  Upload and
// event publication are best effort.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.OutputPath == "" {
		return nil, errors.Configuration("ranking output path is required")
	}
	if req.Precision <= 0 {
		req.Precision = 6
	}

	start := time.Now()
	diseases, err := tabular.ReadEmbeddingSet(req.DiseaseEmbeddings)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load disease embeddings")
	}
	compounds, err := tabular.ReadEmbeddingSet(req.CompoundEmbeddings)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load compound embeddings")
	}
	names, err := tabular.LoadNameIndex(req.MetadataPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "load compound metadata")
	}
	s.metrics.ObservePhase("load", time.Since(start))
	s.logger.Info("ranking inputs loaded",
		logging.Int("diseases", diseases.Len()),
		logging.Int("compounds", compounds.Len()),
		logging.Int("dimension", compounds.Dim()),
		logging.Int("named_compounds", names.Len()))

	degradedBefore := s.engine.Enricher().Degraded()
	records, err := s.engine.Rank(ctx, diseases, compounds, names, req.TopN)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	if err := tabular.WriteMatchTable(req.OutputPath, records, req.Precision); err != nil {
		return nil, err
	}
	s.metrics.ObservePhase("write", time.Since(start))

	res := &RunResult{
		OutputPath: req.OutputPath,
		Diseases:   diseases.Len(),
		Compounds:  compounds.Len(),
		Matches:    len(records),
		Degraded:   s.engine.Enricher().Degraded() - degradedBefore,
		Records:    records,
	}
	s.logger.Info("match table written",
		logging.String("path", req.OutputPath),
		logging.Int("matches", res.Matches),
		logging.Int("degraded", res.Degraded))

	if s.artifacts != nil {
		up, err := s.artifacts.Publish(context.WithoutCancel(ctx), s.runID, req.OutputPath)
		if err != nil {
			s.metrics.PublishFailuresTotal.WithLabelValues("minio").Inc()
			s.logger.Warn("match table upload failed", logging.Err(err))
		} else {
			res.ArtifactURI = "s3://" + up.Bucket + "/" + up.ObjectKey
		}
	}

	if s.events != nil {
		event := domain.RankingCompletedEvent{
			RunID:       s.runID,
			OutputPath:  req.OutputPath,
			ArtifactURI: res.ArtifactURI,
			Diseases:    res.Diseases,
			Compounds:   res.Compounds,
			Matches:     res.Matches,
			TopN:        req.TopN,
			Degraded:    res.Degraded,
			CompletedAt: time.Now().UTC(),
		}
		if err := s.events.PublishEvent(context.WithoutCancel(ctx), event); err != nil {
			s.metrics.PublishFailuresTotal.WithLabelValues("kafka").Inc()
			s.logger.Warn("ranking event publication failed", logging.Err(err))
		}
	}
	return res, nil
}

//Personal.AI order the ending
