package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/OrphaMine/pkg/errors"
)

func newValidConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := newValidConfig()

	assert.Equal(t, DefaultCatalogBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, DefaultPageSize, cfg.Ingest.PageSize)
	assert.Equal(t, DefaultIngestConcurrency, cfg.Ingest.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Ingest.ListingBackoffInitial)
	assert.Equal(t, DefaultTopN, cfg.Ranking.TopN)
	assert.Equal(t, 3, cfg.Enrichment.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Enrichment.RetryInterval)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
}

func TestApplyDefaults_RankingInputsFollowOtherSections(t *testing.T) {
	cfg := &Config{}
	cfg.Ingest.DatasetPath = "custom/dataset.csv"
	cfg.Embedding.CompoundOutput = "custom/c.csv"
	ApplyDefaults(cfg)

	assert.Equal(t, "custom/dataset.csv", cfg.Ranking.MetadataPath)
	assert.Equal(t, "custom/c.csv", cfg.Ranking.CompoundEmbeddings)
	assert.Equal(t, DefaultDiseaseEmbeddings, cfg.Ranking.DiseaseEmbeddings)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Ingest.PageSize = 25
	cfg.Ranking.TopN = 3
	ApplyDefaults(cfg)

	assert.Equal(t, 25, cfg.Ingest.PageSize)
	assert.Equal(t, 3, cfg.Ranking.TopN)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	require.NoError(t, newValidConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"catalog url", func(c *Config) { c.Catalog.BaseURL = "ftp://example.org" }},
		{"page size", func(c *Config) { c.Ingest.PageSize = -1 }},
		{"concurrency", func(c *Config) { c.Ingest.Concurrency = -2 }},
		{"backoff ordering", func(c *Config) { c.Ingest.ListingBackoffMax = time.Second }},
		{"top n", func(c *Config) { c.Ranking.TopN = -1 }},
		{"precision", func(c *Config) { c.Ranking.ScorePrecision = 20 }},
		{"enrichment attempts", func(c *Config) { c.Enrichment.MaxAttempts = -1 }},
		{"redis addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
		{"minio creds", func(c *Config) { c.MinIO.Enabled = true }},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := newValidConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsConfiguration(err))
		})
	}
}

func TestValidate_DisabledEnrichmentSkipsChecks(t *testing.T) {
	cfg := newValidConfig()
	cfg.Enrichment.Disabled = true
	cfg.Enrichment.BaseURL = "not a url"
	assert.NoError(t, cfg.Validate())
}

func TestValidateIngestParams(t *testing.T) {
	assert.NoError(t, ValidateIngestParams(10, 100, 8))
	assert.Error(t, ValidateIngestParams(0, 100, 8))
	assert.Error(t, ValidateIngestParams(10, 0, 8))
	assert.Error(t, ValidateIngestParams(10, 5000, 8))
	assert.Error(t, ValidateIngestParams(10, 100, 0))
}

//Personal.AI order the ending
