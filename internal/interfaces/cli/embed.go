package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/OrphaMine/internal/application/embedding"
	"github.com/turtacn/OrphaMine/internal/infrastructure/embedding/ollama"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
)

type embedOptions struct {
	dataset       string
	diseaseList   string
	compoundsOut  string
	diseasesOut   string
	skipCompounds bool
	skipDiseases  bool
	concurrency   int
}

// embedSummary reports both sides of an embedding run.
type embedSummary struct {
	Compounds *embedding.BuildStats `json:"compounds,omitempty"`
	Diseases  *embedding.BuildStats `json:"diseases,omitempty"`
}

func (s *embedSummary) TableHeaders() []string {
	return []string{"KIND", "REQUESTED", "EMBEDDED", "FAILED", "SKIPPED", "DURATION"}
}

func (s *embedSummary) TableRows() [][]string {
	var rows [][]string
	add := func(kind string, st *embedding.BuildStats) {
		if st == nil {
			return
		}
		rows = append(rows, []string{
			kind,
			strconv.Itoa(st.Requested),
			strconv.Itoa(st.Embedded),
			strconv.Itoa(st.Failed),
			strconv.Itoa(st.Skipped),
			st.Duration.String(),
		})
	}
	add("compound", s.Compounds)
	add("disease", s.Diseases)
	return rows
}

func (s *embedSummary) String() string {
	var sb strings.Builder
	for _, row := range s.TableRows() {
		fmt.Fprintf(&sb, "%s: %s embedded, %s failed, %s skipped in %s\n", row[0], row[2], row[3], row[4], row[5])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func newEmbedCmd() *cobra.Command {
	opts := &embedOptions{}

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed dataset compounds and disease names",
		Long: "Generate compound embeddings from the SMILES strings in the dataset and\n" +
			"disease embeddings from the disease list, using the configured embedding\n" +
			"service.  Each output file is replaced atomically once complete.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "compound dataset CSV (default from ingest.dataset_path)")
	cmd.Flags().StringVar(&opts.diseaseList, "diseases-list", "", "disease list CSV (default from embedding.disease_list_path)")
	cmd.Flags().StringVar(&opts.compoundsOut, "compounds-out", "", "compound embedding file (default from embedding.compound_output)")
	cmd.Flags().StringVar(&opts.diseasesOut, "diseases-out", "", "disease embedding file (default from embedding.disease_output)")
	cmd.Flags().BoolVar(&opts.skipCompounds, "skip-compounds", false, "do not embed compounds")
	cmd.Flags().BoolVar(&opts.skipDiseases, "skip-diseases", false, "do not embed diseases")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel embedding requests (default from embedding.concurrency)")
	return cmd
}

func runEmbed(cmd *cobra.Command, opts *embedOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config.Embedding
	datasetPath := cliCtx.Config.Ingest.DatasetPath

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		datasetPath = opts.dataset
	}
	if flags.Changed("diseases-list") {
		cfg.DiseaseListPath = opts.diseaseList
	}
	if flags.Changed("compounds-out") {
		cfg.CompoundOutput = opts.compoundsOut
	}
	if flags.Changed("diseases-out") {
		cfg.DiseaseOutput = opts.diseasesOut
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}

	compoundClient, err := ollama.NewClient(cfg.BaseURL, cfg.CompoundModel, cfg.Timeout)
	if err != nil {
		return err
	}
	diseaseClient, err := ollama.NewClient(cfg.BaseURL, cfg.DiseaseModel, cfg.Timeout)
	if err != nil {
		return err
	}

	builderOpts := []embedding.BuilderOption{
		embedding.WithConcurrency(cfg.Concurrency),
		embedding.WithTimeout(cfg.Timeout),
		embedding.WithMetrics(cliCtx.Metrics),
	}
	svc := embedding.NewService(
		embedding.NewBuilder(compoundClient, "compound", cliCtx.Logger, builderOpts...),
		embedding.NewBuilder(diseaseClient, "disease", cliCtx.Logger, builderOpts...),
		tabular.NewDatasetStore(datasetPath, cliCtx.Logger),
		cliCtx.Logger,
	)

	req := embedding.Request{
		DiseaseListPath: cfg.DiseaseListPath,
		CompoundsOut:    cfg.CompoundOutput,
		DiseasesOut:     cfg.DiseaseOutput,
	}
	if opts.skipCompounds {
		req.CompoundsOut = ""
	}
	if opts.skipDiseases {
		req.DiseasesOut = ""
	}

	res, err := svc.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	return PrintResult(cmd, &embedSummary{Compounds: res.Compounds, Diseases: res.Diseases})
}

//Personal.AI order the ending
