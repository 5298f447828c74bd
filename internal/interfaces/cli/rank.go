package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/OrphaMine/internal/application/ranking"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

type rankOptions struct {
	topN        int
	diseases    string
	compounds   string
	metadata    string
	out         string
	parallelism int
}

// rankSummary is printed after the match table is written.
type rankSummary struct {
	OutputPath  string `json:"output_path"`
	Diseases    int    `json:"diseases"`
	Compounds   int    `json:"compounds"`
	Matches     int    `json:"matches"`
	TopN        int    `json:"top_n"`
	Degraded    int    `json:"degraded_lookups"`
	ArtifactURI string `json:"artifact_uri,omitempty"`
	Elapsed     string `json:"elapsed"`
}

func (s *rankSummary) pairs() keyValues {
	kv := keyValues{
		{"output", s.OutputPath},
		{"diseases", strconv.Itoa(s.Diseases)},
		{"compounds", strconv.Itoa(s.Compounds)},
		{"matches", strconv.Itoa(s.Matches)},
		{"top_n", strconv.Itoa(s.TopN)},
		{"degraded_lookups", strconv.Itoa(s.Degraded)},
		{"elapsed", s.Elapsed},
	}
	if s.ArtifactURI != "" {
		kv = append(kv, [2]string{"artifact", s.ArtifactURI})
	}
	return kv
}

func (s *rankSummary) TableHeaders() []string { return s.pairs().TableHeaders() }
func (s *rankSummary) TableRows() [][]string  { return s.pairs().TableRows() }
func (s *rankSummary) String() string         { return s.pairs().String() }

func newRankCmd() *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank compounds for every disease and write the match table",
		Long: "Score every compound against every disease by cosine similarity, keep the\n" +
			"top N per disease, attach the compound name and a PubMed article count,\n" +
			"and write the match table.  Literature lookup failures are recorded as\n" +
			"zero counts and never abort the run.",
		Example: "  orphamine rank --top-n 15 --out results/disease_compound_matches.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.topN, "top-n", 0, "matches kept per disease (default from ranking.top_n)")
	cmd.Flags().StringVar(&opts.diseases, "diseases", "", "disease embedding file")
	cmd.Flags().StringVar(&opts.compounds, "compounds", "", "compound embedding file")
	cmd.Flags().StringVar(&opts.metadata, "metadata", "", "compound metadata table holding display names")
	cmd.Flags().StringVar(&opts.out, "out", "", "match table path")
	cmd.Flags().IntVar(&opts.parallelism, "parallelism", 0, "diseases scored concurrently")
	return cmd
}

func runRank(cmd *cobra.Command, opts *rankOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config.Ranking

	flags := cmd.Flags()
	if flags.Changed("top-n") {
		cfg.TopN = opts.topN
	}
	if flags.Changed("diseases") {
		cfg.DiseaseEmbeddings = opts.diseases
	}
	if flags.Changed("compounds") {
		cfg.CompoundEmbeddings = opts.compounds
	}
	if flags.Changed("metadata") {
		cfg.MetadataPath = opts.metadata
	}
	if flags.Changed("out") {
		cfg.OutputPath = opts.out
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = opts.parallelism
	}
	if cfg.TopN < 1 {
		return errors.Newf(errors.ErrCodeConfiguration, "top-n must be >= 1, got %d", cfg.TopN)
	}
	if cfg.Parallelism < 1 {
		return errors.Newf(errors.ErrCodeConfiguration, "parallelism must be >= 1, got %d", cfg.Parallelism)
	}

	enricher, err := newEnricher(cliCtx)
	if err != nil {
		return err
	}
	engine := ranking.NewEngine(enricher, cliCtx.Logger,
		ranking.WithParallelism(cfg.Parallelism),
		ranking.WithEngineMetrics(cliCtx.Metrics),
	)

	svcOpts := []ranking.ServiceOption{
		ranking.WithServiceMetrics(cliCtx.Metrics),
		ranking.WithRunID(cliCtx.RunID),
	}
	if store := newArtifactStore(cliCtx); store != nil {
		svcOpts = append(svcOpts, ranking.WithArtifactPublisher(store))
	}
	if producer := newEventProducer(cliCtx); producer != nil {
		svcOpts = append(svcOpts, ranking.WithEventPublisher(producer))
	}
	svc := ranking.NewService(engine, cliCtx.Logger, svcOpts...)

	start := time.Now()
	res, err := svc.Run(cmd.Context(), ranking.RunRequest{
		DiseaseEmbeddings:  cfg.DiseaseEmbeddings,
		CompoundEmbeddings: cfg.CompoundEmbeddings,
		MetadataPath:       cfg.MetadataPath,
		OutputPath:         cfg.OutputPath,
		TopN:               cfg.TopN,
		Precision:          cfg.ScorePrecision,
	})
	if err != nil {
		return err
	}

	return PrintResult(cmd, &rankSummary{
		OutputPath:  res.OutputPath,
		Diseases:    res.Diseases,
		Compounds:   res.Compounds,
		Matches:     res.Matches,
		TopN:        cfg.TopN,
		Degraded:    res.Degraded,
		ArtifactURI: res.ArtifactURI,
		Elapsed:     time.Since(start).Round(time.Millisecond).String(),
	})
}

//Personal.AI order the ending
