package cli

import (
	"context"
	stdliberrors "errors"
	"net/http"
	"time"

	"github.com/turtacn/OrphaMine/internal/application/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/catalog/chembl"
	"github.com/turtacn/OrphaMine/internal/infrastructure/database/redis"
	"github.com/turtacn/OrphaMine/internal/infrastructure/literature/pubmed"
	"github.com/turtacn/OrphaMine/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/storage/minio"
	"github.com/turtacn/OrphaMine/internal/pipeline"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// startMetricsServer exposes the collector on the configured address until
// the command finishes.
func startMetricsServer(c *CLIContext) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Collector.Handler())
	srv := &http.Server{
		Addr:              c.Config.Metrics.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stdliberrors.Is(err, http.ErrServerClosed) {
			c.Logger.Warn("metrics server stopped", logging.String("addr", srv.Addr), logging.Err(err))
		}
	}()
	c.Logger.Info("metrics server listening", logging.String("addr", srv.Addr))
	c.onClose(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
}

// newCatalogClient builds the ChEMBL client from configuration.
func newCatalogClient(c *CLIContext) (*chembl.Client, error) {
	cfg := c.Config.Catalog
	return chembl.NewClient(cfg.BaseURL,
		chembl.WithLogger(c.Logger),
		chembl.WithUserAgent(cfg.UserAgent),
		chembl.WithListTimeout(cfg.ListTimeout),
		chembl.WithDetailTimeout(cfg.DetailTimeout),
	)
}

// listingPolicy is the unbounded listing retry schedule from configuration.
func listingPolicy(c *CLIContext) pipeline.RetryPolicy {
	cfg := c.Config.Ingest
	p := pipeline.UnboundedExponential("catalog-listing",
		cfg.ListingBackoffInitial, cfg.ListingBackoffMax, cfg.ListingBackoffMultiplier)
	p.Retryable = errors.IsRetryable
	return p
}

// newEventProducer returns nil when event publication is disabled.  A
// producer that cannot be built is logged and skipped; events are best
// effort.
func newEventProducer(c *CLIContext) *kafka.Producer {
	cfg := c.Config.Kafka
	if !cfg.Enabled {
		return nil
	}
	p, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		TopicPrefix:  cfg.TopicPrefix,
		Source:       "orphamine",
		WriteTimeout: cfg.WriteTimeout,
	}, c.Logger)
	if err != nil {
		c.Logger.Warn("event publication disabled", logging.Err(err))
		return nil
	}
	c.onClose(func() { _ = p.Close() })
	return p
}

// newArtifactStore returns nil when artifact publication is disabled.
func newArtifactStore(c *CLIContext) *minio.ArtifactStore {
	cfg := c.Config.MinIO
	if !cfg.Enabled {
		return nil
	}
	client, err := minio.NewMinIOClient(&minio.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
	}, c.Logger)
	if err != nil {
		c.Logger.Warn("artifact publication disabled", logging.Err(err))
		return nil
	}
	return minio.NewArtifactStore(client, c.Logger)
}

// newCountCache returns nil when the cache is disabled or unreachable; the
// enricher then goes straight to the literature service.
func newCountCache(c *CLIContext) *redis.CountCache {
	cfg := c.Config.Redis
	if !cfg.Enabled {
		return nil
	}
	client, err := redis.NewClient(&redis.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}, c.Logger)
	if err != nil {
		c.Logger.Warn("enrichment cache unavailable, continuing without it", logging.Err(err))
		return nil
	}
	c.onClose(func() { _ = client.Close() })
	return redis.NewCountCache(client, c.Logger,
		redis.WithPrefix(cfg.KeyPrefix),
		redis.WithTTL(cfg.TTL),
	)
}

// newEnricher wires the PubMed client, the optional cache and the configured
// rate and retry limits.  A disabled enricher reports zero for every name.
func newEnricher(c *CLIContext) (*ranking.Enricher, error) {
	cfg := c.Config.Enrichment
	opts := []ranking.EnricherOption{ranking.WithEnricherMetrics(c.Metrics)}
	if cfg.Disabled {
		c.Logger.Info("literature enrichment disabled")
		return ranking.NewEnricher(nil, c.Logger, opts...), nil
	}

	client, err := pubmed.NewClient(pubmed.Config{
		BaseURL: cfg.BaseURL,
		Tool:    cfg.Tool,
		Email:   cfg.Email,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, c.Logger)
	if err != nil {
		return nil, err
	}

	opts = append(opts,
		ranking.WithMinInterval(cfg.MinInterval),
		ranking.WithLookupPolicy(pipeline.FixedInterval("enrichment-lookup", cfg.MaxAttempts, cfg.RetryInterval)),
	)
	if cache := newCountCache(c); cache != nil {
		opts = append(opts, ranking.WithCountCache(cache))
	}
	return ranking.NewEnricher(client, c.Logger, opts...), nil
}

//Personal.AI order the ending
