package prometheus

import "time"

// Outcome label values for RecordsTotal.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeSkipped  = "skipped"
)

// Enrichment label values for EnrichmentLookupsTotal.
const (
	LookupSuccess  = "success"
	LookupDegraded = "degraded"
	LookupCached   = "cached"
	LookupSkipped  = "skipped"
)

var (
	DefaultChunkWriteBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5}
	DefaultRankingBuckets    = []float64{.01, .1, .5, 1, 5, 10, 30, 60, 300}
)

// PipelineMetrics holds every metric the fetcher and ranking engine emit.
type PipelineMetrics struct {
	PagesListedTotal     CounterVec
	ListingRetriesTotal  CounterVec
	RecordsTotal         CounterVec
	ChunkWriteDuration   HistogramVec
	DatasetRecords       GaugeVec
	RankingDuration      HistogramVec
	DiseasesRankedTotal  CounterVec
	EnrichmentLookups    CounterVec
	EnrichmentRetries    CounterVec
	EmbeddingsTotal      CounterVec
	PublishFailuresTotal CounterVec
}

// NewPipelineMetrics registers all metrics with c.
func NewPipelineMetrics(c MetricsCollector) *PipelineMetrics {
	return &PipelineMetrics{
		PagesListedTotal:     c.RegisterCounter("catalog_pages_listed_total", "Catalog listing pages fetched successfully"),
		ListingRetriesTotal:  c.RegisterCounter("catalog_listing_retries_total", "Listing attempts that failed and were retried"),
		RecordsTotal:         c.RegisterCounter("ingest_records_total", "Catalog records by ingestion outcome", "outcome"),
		ChunkWriteDuration:   c.RegisterHistogram("ingest_chunk_write_duration_seconds", "Time to durably append one chunk", DefaultChunkWriteBuckets),
		DatasetRecords:       c.RegisterGauge("ingest_dataset_records", "Records present in the dataset"),
		RankingDuration:      c.RegisterHistogram("ranking_duration_seconds", "Duration of ranking phases", DefaultRankingBuckets, "phase"),
		DiseasesRankedTotal:  c.RegisterCounter("ranking_diseases_total", "Diseases ranked"),
		EnrichmentLookups:    c.RegisterCounter("enrichment_lookups_total", "Literature lookups by result", "result"),
		EnrichmentRetries:    c.RegisterCounter("enrichment_retries_total", "Literature lookup attempts that were retried"),
		EmbeddingsTotal:      c.RegisterCounter("embeddings_total", "Embeddings generated by kind and result", "kind", "result"),
		PublishFailuresTotal: c.RegisterCounter("publish_failures_total", "Best-effort publications that failed", "target"),
	}
}

// NewNopPipelineMetrics returns metrics that record nothing.
func NewNopPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		PagesListedTotal:     noopCounterVec{},
		ListingRetriesTotal:  noopCounterVec{},
		RecordsTotal:         noopCounterVec{},
		ChunkWriteDuration:   noopHistogramVec{},
		DatasetRecords:       noopGaugeVec{},
		RankingDuration:      noopHistogramVec{},
		DiseasesRankedTotal:  noopCounterVec{},
		EnrichmentLookups:    noopCounterVec{},
		EnrichmentRetries:    noopCounterVec{},
		EmbeddingsTotal:      noopCounterVec{},
		PublishFailuresTotal: noopCounterVec{},
	}
}

// ObservePhase records d under the ranking phase label.
func (m *PipelineMetrics) ObservePhase(phase string, d time.Duration) {
	m.RankingDuration.WithLabelValues(phase).Observe(d.Seconds())
}

//Personal.AI order the ending
