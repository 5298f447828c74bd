package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/OrphaMine/internal/application/ingestion"
	"github.com/turtacn/OrphaMine/internal/config"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

type fetchOptions struct {
	target      int
	pageSize    int
	concurrency int
	dataset     string
	publish     bool
}

// fetchSummary is printed when a fetch run stops.
type fetchSummary struct {
	DatasetPath string `json:"dataset_path"`
	Written     int    `json:"written"`
	Added       int    `json:"added"`
	Target      int    `json:"target"`
	Pages       int    `json:"pages"`
	Rejected    int    `json:"rejected"`
	Skipped     int    `json:"skipped"`
	Offset      int    `json:"offset"`
	Exhausted   bool   `json:"catalog_exhausted"`
	Interrupted bool   `json:"interrupted"`
	ArtifactURI string `json:"artifact_uri,omitempty"`
	Elapsed     string `json:"elapsed"`
}

func (s *fetchSummary) pairs() keyValues {
	kv := keyValues{
		{"dataset", s.DatasetPath},
		{"written", strconv.Itoa(s.Written)},
		{"added", strconv.Itoa(s.Added)},
		{"target", strconv.Itoa(s.Target)},
		{"pages", strconv.Itoa(s.Pages)},
		{"rejected", strconv.Itoa(s.Rejected)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"catalog_exhausted", strconv.FormatBool(s.Exhausted)},
		{"interrupted", strconv.FormatBool(s.Interrupted)},
		{"elapsed", s.Elapsed},
	}
	if s.ArtifactURI != "" {
		kv = append(kv, [2]string{"artifact", s.ArtifactURI})
	}
	return kv
}

func (s *fetchSummary) TableHeaders() []string { return s.pairs().TableHeaders() }
func (s *fetchSummary) TableRows() [][]string  { return s.pairs().TableRows() }
func (s *fetchSummary) String() string         { return s.pairs().String() }

func newFetchCmd() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Grow the compound dataset from the ChEMBL catalog",
		Long: "Fetch pages of molecule identifiers from ChEMBL, retrieve their details in\n" +
			"parallel and append them to the dataset in durable chunks.  Identifiers\n" +
			"already in the dataset are skipped, so an interrupted run resumes where\n" +
			"it stopped.  Interrupting with Ctrl-C keeps every committed chunk.",
		Example: "  orphamine fetch --target 5000 --page-size 100 --concurrency 8",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.target, "target", 0, "number of records the dataset should hold (default from ingest.target_count)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "identifiers per listing page, at most 1000 (default from ingest.page_size)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel detail requests (default from ingest.concurrency)")
	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "dataset CSV path (default from ingest.dataset_path)")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "upload the dataset to the artifact store when the run ends")
	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config.Ingest

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.TargetCount = opts.target
	}
	if flags.Changed("page-size") {
		cfg.PageSize = opts.pageSize
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("dataset") {
		cfg.DatasetPath = opts.dataset
	}
	if err := config.ValidateIngestParams(cfg.TargetCount, cfg.PageSize, cfg.Concurrency); err != nil {
		return err
	}

	catalog, err := newCatalogClient(cliCtx)
	if err != nil {
		return err
	}
	store := tabular.NewDatasetStore(cfg.DatasetPath, cliCtx.Logger)

	fetcherOpts := []ingestion.FetcherOption{
		ingestion.WithListingPolicy(listingPolicy(cliCtx)),
		ingestion.WithDetailTimeout(cliCtx.Config.Catalog.DetailTimeout),
		ingestion.WithMetrics(cliCtx.Metrics),
		ingestion.WithRunID(cliCtx.RunID),
		ingestion.WithDatasetPath(cfg.DatasetPath),
	}
	if producer := newEventProducer(cliCtx); producer != nil {
		fetcherOpts = append(fetcherOpts, ingestion.WithEventPublisher(producer))
	}
	fetcher := ingestion.NewFetcher(catalog, store, cliCtx.Logger, fetcherOpts...)

	start := time.Now()
	res, err := fetcher.Ingest(cmd.Context(), ingestion.IngestRequest{
		TargetCount: cfg.TargetCount,
		PageSize:    cfg.PageSize,
		Concurrency: cfg.Concurrency,
	}, nil)
	interrupted := err != nil && errors.IsCode(err, errors.ErrCodeCancelled)
	if res == nil || (err != nil && !interrupted) {
		return err
	}

	summary := &fetchSummary{
		DatasetPath: cfg.DatasetPath,
		Written:     res.Written,
		Added:       res.Added,
		Target:      cfg.TargetCount,
		Pages:       res.Pages,
		Rejected:    res.Rejected,
		Skipped:     res.Skipped,
		Offset:      res.Offset,
		Exhausted:   res.Exhausted,
		Interrupted: interrupted,
		Elapsed:     time.Since(start).Round(time.Millisecond).String(),
	}
	if interrupted {
		cliCtx.Logger.Info("fetch interrupted, committed chunks kept", logging.Int("written", res.Written))
	}

	if opts.publish && res.Written > 0 {
		if store := newArtifactStore(cliCtx); store != nil {
			up, perr := store.Publish(context.WithoutCancel(cmd.Context()), cliCtx.RunID, cfg.DatasetPath)
			if perr != nil {
				cliCtx.Metrics.PublishFailuresTotal.WithLabelValues("minio").Inc()
				cliCtx.Logger.Warn("dataset upload failed", logging.Err(perr))
			} else {
				summary.ArtifactURI = fmt.Sprintf("s3://%s/%s", up.Bucket, up.ObjectKey)
			}
		}
	}

	return PrintResult(cmd, summary)
}

//Personal.AI order the ending
