package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
)

// reportCardURL links a compound to its ChEMBL report card.
const reportCardURL = "https://www.ebi.ac.uk/chembl/compound_report_card/%s/"

type matchesOptions struct {
	table    string
	disease  string
	name     string
	minScore float64
	limit    int
	links    bool
}

// matchView is one row of the matches listing.
type matchView struct {
	ranking.MatchRecord
	ReportCard string `json:"report_card,omitempty"`
}

func newMatchesCmd() *cobra.Command {
	opts := &matchesOptions{}

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Browse a written match table",
		Long: "Read the match table and list its rows, optionally filtered by disease,\n" +
			"compound name or minimum similarity.",
		Example: "  orphamine matches --disease \"Fabry disease\" --min-score 0.8 --links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatches(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "match table path (default from ranking.output_path)")
	cmd.Flags().StringVar(&opts.disease, "disease", "", "only rows for this disease (case-insensitive)")
	cmd.Flags().StringVar(&opts.name, "name", "", "only compounds whose name contains this text")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "only rows with at least this similarity")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum rows shown, 0 for all")
	cmd.Flags().BoolVar(&opts.links, "links", false, "include ChEMBL report card links")
	return cmd
}

func runMatches(cmd *cobra.Command, opts *matchesOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	path := cliCtx.Config.Ranking.OutputPath
	if cmd.Flags().Changed("table") {
		path = opts.table
	}

	records, err := tabular.ReadMatchTable(path)
	if err != nil {
		return err
	}
	views := filterMatches(records, opts)

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, views)
	case "table":
		renderMatches(cmd, views, opts.links)
		return nil
	default:
		for _, v := range views {
			line := fmt.Sprintf("%s\t#%d\t%s\t%s\t%.6f\t%d",
				v.Disease, v.Rank, v.CompoundID, v.CompoundName, v.Similarity, v.Enrichment)
			if v.ReportCard != "" {
				line += "\t" + v.ReportCard
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	}
}

func filterMatches(records []ranking.MatchRecord, opts *matchesOptions) []matchView {
	disease := strings.TrimSpace(opts.disease)
	name := strings.ToLower(strings.TrimSpace(opts.name))

	views := make([]matchView, 0, len(records))
	for _, r := range records {
		if disease != "" && !strings.EqualFold(r.Disease, disease) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(r.CompoundName), name) {
			continue
		}
		if r.Similarity < opts.minScore {
			continue
		}
		v := matchView{MatchRecord: r}
		if opts.links {
			v.ReportCard = fmt.Sprintf(reportCardURL, r.CompoundID)
		}
		views = append(views, v)
		if opts.limit > 0 && len(views) == opts.limit {
			break
		}
	}
	return views
}

func renderMatches(cmd *cobra.Command, views []matchView, links bool) {
	if len(views) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
		return
	}

	headers := []string{"DISEASE", "RANK", "CHEMBL ID", "NAME", "SIMILARITY", "PUBMED"}
	if links {
		headers = append(headers, "REPORT CARD")
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	for _, v := range views {
		row := []string{
			v.Disease,
			strconv.Itoa(v.Rank),
			v.CompoundID,
			v.CompoundName,
			colorScore(v.Similarity),
			strconv.Itoa(v.Enrichment),
		}
		if links {
			row = append(row, v.ReportCard)
		}
		table.Append(row)
	}
	table.Render()
}

// colorScore highlights strong matches.
func colorScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', 6, 64)
	switch {
	case score >= 0.9:
		return color.GreenString("%s", s)
	case score >= 0.7:
		return color.YellowString("%s", s)
	default:
		return s
	}
}

//Personal.AI order the ending
