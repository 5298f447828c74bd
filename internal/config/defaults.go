package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultCatalogBaseURL       = "https://www.ebi.ac.uk/chembl/api/data"
	DefaultCatalogUserAgent     = "orphamine/1.0"
	DefaultCatalogListTimeout   = 30 * time.Second
	DefaultCatalogDetailTimeout = 10 * time.Second

	DefaultDatasetPath              = "data_files/chembl_raw_compounds.csv"
	DefaultTargetCount              = 50000
	DefaultPageSize                 = 100
	DefaultIngestConcurrency        = 8
	DefaultListingBackoffInitial    = 5 * time.Second
	DefaultListingBackoffMax        = 2 * time.Minute
	DefaultListingBackoffMultiplier = 2.0

	DefaultEmbeddingBaseURL     = "http://localhost:11434"
	DefaultCompoundModel        = "chemberta"
	DefaultDiseaseModel         = "biobert"
	DefaultEmbeddingConcurrency = 4
	DefaultEmbeddingTimeout     = 60 * time.Second
	DefaultDiseaseListPath      = "data_files/disease_list.csv"
	DefaultCompoundEmbeddings   = "data_files/compound_embeddings.csv"
	DefaultDiseaseEmbeddings    = "data_files/disease_embeddings.csv"

	DefaultTopN           = 15
	DefaultMatchesPath    = "results/disease_compound_matches.csv"
	DefaultParallelism    = 4
	DefaultScorePrecision = 6

	DefaultEnrichmentBaseURL       = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultEnrichmentTool          = "orphamine"
	DefaultEnrichmentMaxAttempts   = 3
	DefaultEnrichmentRetryInterval = time.Second
	DefaultEnrichmentMinInterval   = 350 * time.Millisecond
	DefaultEnrichmentTimeout       = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisDialTimeout = 5 * time.Second
	DefaultRedisTTL         = 24 * time.Hour
	DefaultRedisKeyPrefix   = "orphamine:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "orphamine-artifacts"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaTopicPrefix  = "orphamine"
	DefaultKafkaWriteTimeout = 10 * time.Second

	DefaultMetricsNamespace = "orphamine"
)

// ApplyDefaults fills every zero-value field in cfg with its default.  Values
// already set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = DefaultCatalogBaseURL
	}
	if cfg.Catalog.UserAgent == "" {
		cfg.Catalog.UserAgent = DefaultCatalogUserAgent
	}
	if cfg.Catalog.ListTimeout == 0 {
		cfg.Catalog.ListTimeout = DefaultCatalogListTimeout
	}
	if cfg.Catalog.DetailTimeout == 0 {
		cfg.Catalog.DetailTimeout = DefaultCatalogDetailTimeout
	}

	// ── Ingest ────────────────────────────────────────────────────────────────
	if cfg.Ingest.DatasetPath == "" {
		cfg.Ingest.DatasetPath = DefaultDatasetPath
	}
	if cfg.Ingest.TargetCount == 0 {
		cfg.Ingest.TargetCount = DefaultTargetCount
	}
	if cfg.Ingest.PageSize == 0 {
		cfg.Ingest.PageSize = DefaultPageSize
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = DefaultIngestConcurrency
	}
	if cfg.Ingest.ListingBackoffInitial == 0 {
		cfg.Ingest.ListingBackoffInitial = DefaultListingBackoffInitial
	}
	if cfg.Ingest.ListingBackoffMax == 0 {
		cfg.Ingest.ListingBackoffMax = DefaultListingBackoffMax
	}
	if cfg.Ingest.ListingBackoffMultiplier == 0 {
		cfg.Ingest.ListingBackoffMultiplier = DefaultListingBackoffMultiplier
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = DefaultEmbeddingBaseURL
	}
	if cfg.Embedding.CompoundModel == "" {
		cfg.Embedding.CompoundModel = DefaultCompoundModel
	}
	if cfg.Embedding.DiseaseModel == "" {
		cfg.Embedding.DiseaseModel = DefaultDiseaseModel
	}
	if cfg.Embedding.Concurrency == 0 {
		cfg.Embedding.Concurrency = DefaultEmbeddingConcurrency
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = DefaultEmbeddingTimeout
	}
	if cfg.Embedding.DiseaseListPath == "" {
		cfg.Embedding.DiseaseListPath = DefaultDiseaseListPath
	}
	if cfg.Embedding.CompoundOutput == "" {
		cfg.Embedding.CompoundOutput = DefaultCompoundEmbeddings
	}
	if cfg.Embedding.DiseaseOutput == "" {
		cfg.Embedding.DiseaseOutput = DefaultDiseaseEmbeddings
	}

	// ── Ranking ───────────────────────────────────────────────────────────────
	if cfg.Ranking.TopN == 0 {
		cfg.Ranking.TopN = DefaultTopN
	}
	if cfg.Ranking.DiseaseEmbeddings == "" {
		cfg.Ranking.DiseaseEmbeddings = cfg.Embedding.DiseaseOutput
	}
	if cfg.Ranking.CompoundEmbeddings == "" {
		cfg.Ranking.CompoundEmbeddings = cfg.Embedding.CompoundOutput
	}
	if cfg.Ranking.MetadataPath == "" {
		cfg.Ranking.MetadataPath = cfg.Ingest.DatasetPath
	}
	if cfg.Ranking.OutputPath == "" {
		cfg.Ranking.OutputPath = DefaultMatchesPath
	}
	if cfg.Ranking.Parallelism == 0 {
		cfg.Ranking.Parallelism = DefaultParallelism
	}
	if cfg.Ranking.ScorePrecision == 0 {
		cfg.Ranking.ScorePrecision = DefaultScorePrecision
	}

	// ── Enrichment ────────────────────────────────────────────────────────────
	if cfg.Enrichment.BaseURL == "" {
		cfg.Enrichment.BaseURL = DefaultEnrichmentBaseURL
	}
	if cfg.Enrichment.Tool == "" {
		cfg.Enrichment.Tool = DefaultEnrichmentTool
	}
	if cfg.Enrichment.MaxAttempts == 0 {
		cfg.Enrichment.MaxAttempts = DefaultEnrichmentMaxAttempts
	}
	if cfg.Enrichment.RetryInterval == 0 {
		cfg.Enrichment.RetryInterval = DefaultEnrichmentRetryInterval
	}
	if cfg.Enrichment.MinInterval == 0 {
		cfg.Enrichment.MinInterval = DefaultEnrichmentMinInterval
	}
	if cfg.Enrichment.Timeout == 0 {
		cfg.Enrichment.Timeout = DefaultEnrichmentTimeout
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// envKeys lists every leaf key viper must know about so that ORPHAMINE_*
// variables are honoured by Unmarshal even without a config file.
var envKeys = []string{
	"log.level", "log.format", "log.output_paths",
	"catalog.base_url", "catalog.user_agent", "catalog.list_timeout", "catalog.detail_timeout",
	"ingest.dataset_path", "ingest.target_count", "ingest.page_size", "ingest.concurrency",
	"ingest.listing_backoff_initial", "ingest.listing_backoff_max", "ingest.listing_backoff_multiplier",
	"embedding.base_url", "embedding.compound_model", "embedding.disease_model",
	"embedding.concurrency", "embedding.timeout", "embedding.disease_list_path",
	"embedding.compound_output", "embedding.disease_output",
	"ranking.top_n", "ranking.disease_embeddings", "ranking.compound_embeddings",
	"ranking.metadata_path", "ranking.output_path", "ranking.parallelism", "ranking.score_precision",
	"enrichment.disabled", "enrichment.base_url", "enrichment.tool", "enrichment.email",
	"enrichment.api_key", "enrichment.max_attempts", "enrichment.retry_interval",
	"enrichment.min_interval", "enrichment.timeout",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.dial_timeout",
	"redis.ttl", "redis.key_prefix",
	"minio.enabled", "minio.endpoint", "minio.access_key_id", "minio.secret_access_key",
	"minio.use_ssl", "minio.region", "minio.bucket",
	"kafka.enabled", "kafka.brokers", "kafka.topic_prefix", "kafka.write_timeout",
	"metrics.namespace", "metrics.listen_addr", "metrics.textfile_path",
}

// bindEnv registers every known key with viper's environment lookup.
func bindEnv(v *viper.Viper) error {
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

//Personal.AI order the ending
