// Package config defines the configuration structures for OrphaMine.  No I/O
// lives here, only plain data types and validation; see loader.go for viper.
package config

import (
	"net/url"
	"time"

	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/OrphaMine/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// CatalogConfig addresses the remote compound catalog (ChEMBL REST API).
type CatalogConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	ListTimeout   time.Duration `mapstructure:"list_timeout"`
	DetailTimeout time.Duration `mapstructure:"detail_timeout"`
}

// IngestConfig holds fetcher tunables.
type IngestConfig struct {
	DatasetPath string `mapstructure:"dataset_path"`
	TargetCount int    `mapstructure:"target_count"`
	PageSize    int    `mapstructure:"page_size"`
	Concurrency int    `mapstructure:"concurrency"`

	// Listing calls retry forever; these bound the delay between attempts.
	ListingBackoffInitial    time.Duration `mapstructure:"listing_backoff_initial"`
	ListingBackoffMax        time.Duration `mapstructure:"listing_backoff_max"`
	ListingBackoffMultiplier float64       `mapstructure:"listing_backoff_multiplier"`
}

// EmbeddingConfig configures the embedding provider and the files the embed
// command reads and writes.
type EmbeddingConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	CompoundModel   string        `mapstructure:"compound_model"`
	DiseaseModel    string        `mapstructure:"disease_model"`
	Concurrency     int           `mapstructure:"concurrency"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DiseaseListPath string        `mapstructure:"disease_list_path"`
	CompoundOutput  string        `mapstructure:"compound_output"`
	DiseaseOutput   string        `mapstructure:"disease_output"`
}

// RankingConfig holds similarity ranking parameters.
type RankingConfig struct {
	TopN               int    `mapstructure:"top_n"`
	DiseaseEmbeddings  string `mapstructure:"disease_embeddings"`
	CompoundEmbeddings string `mapstructure:"compound_embeddings"`
	MetadataPath       string `mapstructure:"metadata_path"`
	OutputPath         string `mapstructure:"output_path"`
	Parallelism        int    `mapstructure:"parallelism"`
	ScorePrecision     int    `mapstructure:"score_precision"`
}

// EnrichmentConfig configures the literature popularity lookup (NCBI E-utilities).
type EnrichmentConfig struct {
	Disabled      bool          `mapstructure:"disabled"`
	BaseURL       string        `mapstructure:"base_url"`
	Tool          string        `mapstructure:"tool"`
	Email         string        `mapstructure:"email"`
	APIKey        string        `mapstructure:"api_key"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds the enrichment cache connection.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	TTL         time.Duration `mapstructure:"ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the artifact store connection.
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
}

// KafkaConfig holds pipeline event publication parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig controls Prometheus exposition.
type MetricsConfig struct {
	Namespace    string `mapstructure:"namespace"`
	ListenAddr   string `mapstructure:"listen_addr"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log        logging.LogConfig `mapstructure:"log"`
	Catalog    CatalogConfig     `mapstructure:"catalog"`
	Ingest     IngestConfig      `mapstructure:"ingest"`
	Embedding  EmbeddingConfig   `mapstructure:"embedding"`
	Ranking    RankingConfig     `mapstructure:"ranking"`
	Enrichment EnrichmentConfig  `mapstructure:"enrichment"`
	Redis      RedisConfig       `mapstructure:"redis"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

func invalid(format string, args ...interface{}) error {
	return apperrors.Newf(apperrors.ErrCodeConfiguration, format, args...)
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found as a configuration error.
func (c *Config) Validate() error {
	// Log
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Catalog
	if !validHTTPURL(c.Catalog.BaseURL) {
		return invalid("catalog.base_url %q must be an absolute http(s) URL", c.Catalog.BaseURL)
	}
	if c.Catalog.DetailTimeout <= 0 || c.Catalog.ListTimeout <= 0 {
		return invalid("catalog timeouts must be positive")
	}

	// Ingest
	if c.Ingest.DatasetPath == "" {
		return invalid("ingest.dataset_path is required")
	}
	if err := ValidateIngestParams(c.Ingest.TargetCount, c.Ingest.PageSize, c.Ingest.Concurrency); err != nil {
		return err
	}
	if c.Ingest.ListingBackoffInitial <= 0 {
		return invalid("ingest.listing_backoff_initial must be positive")
	}
	if c.Ingest.ListingBackoffMax < c.Ingest.ListingBackoffInitial {
		return invalid("ingest.listing_backoff_max must be >= listing_backoff_initial")
	}
	if c.Ingest.ListingBackoffMultiplier < 1 {
		return invalid("ingest.listing_backoff_multiplier must be >= 1, got %v", c.Ingest.ListingBackoffMultiplier)
	}

	// Embedding
	if !validHTTPURL(c.Embedding.BaseURL) {
		return invalid("embedding.base_url %q must be an absolute http(s) URL", c.Embedding.BaseURL)
	}
	if c.Embedding.Concurrency < 1 {
		return invalid("embedding.concurrency must be >= 1, got %d", c.Embedding.Concurrency)
	}

	// Ranking
	if c.Ranking.TopN < 1 {
		return invalid("ranking.top_n must be >= 1, got %d", c.Ranking.TopN)
	}
	if c.Ranking.Parallelism < 1 {
		return invalid("ranking.parallelism must be >= 1, got %d", c.Ranking.Parallelism)
	}
	if c.Ranking.ScorePrecision < 0 || c.Ranking.ScorePrecision > 12 {
		return invalid("ranking.score_precision must be within [0, 12], got %d", c.Ranking.ScorePrecision)
	}
	if c.Ranking.OutputPath == "" {
		return invalid("ranking.output_path is required")
	}

	// Enrichment
	if !c.Enrichment.Disabled {
		if !validHTTPURL(c.Enrichment.BaseURL) {
			return invalid("enrichment.base_url %q must be an absolute http(s) URL", c.Enrichment.BaseURL)
		}
		if c.Enrichment.MaxAttempts < 1 {
			return invalid("enrichment.max_attempts must be >= 1, got %d", c.Enrichment.MaxAttempts)
		}
		if c.Enrichment.RetryInterval < 0 || c.Enrichment.MinInterval < 0 {
			return invalid("enrichment intervals must not be negative")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return invalid("redis.addr is required when redis.enabled")
		}
		if c.Redis.DB < 0 {
			return invalid("redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return invalid("minio.endpoint and minio.bucket are required when minio.enabled")
		}
		if c.MinIO.AccessKeyID == "" || c.MinIO.SecretAccessKey == "" {
			return invalid("minio credentials are required when minio.enabled")
		}
	}

	// Kafka
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return invalid("kafka.brokers must contain at least one broker when kafka.enabled")
	}

	return nil
}

// ValidateIngestParams checks the fetch parameters that may also arrive as
// command-line overrides.
func ValidateIngestParams(targetCount, pageSize, concurrency int) error {
	if targetCount < 1 {
		return invalid("target count must be >= 1, got %d", targetCount)
	}
	if pageSize < 1 || pageSize > 1000 {
		return invalid("page size must be within [1, 1000], got %d", pageSize)
	}
	if concurrency < 1 {
		return invalid("concurrency must be >= 1, got %d", concurrency)
	}
	return nil
}

//Personal.AI order the ending
