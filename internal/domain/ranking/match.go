package ranking

import (
	"sort"
	"strconv"
	"strings"
)

// UnknownName is the display name used when a compound has no metadata entry.
const UnknownName = "N/A"

// MatchRecord is one ranked (disease, compound) pair.
type MatchRecord struct {
	Disease      string  `json:"disease"`
	Rank         int     `json:"compound_rank"`
	CompoundID   string  `json:"compound_chembl_id"`
	CompoundName string  `json:"compound_name"`
	Similarity   float64 `json:"similarity_score"`
	Enrichment   int     `json:"pubmed_articles"`
}

// MatchColumns is the header of the match table.
var MatchColumns = []string{
	"disease",
	"compound_rank",
	"compound_chembl_id",
	"compound_name",
	"similarity_score",
	"pubmed_articles",
}

// Row renders the record with the score rounded to precision decimals.
func (m MatchRecord) Row(precision int) []string {
	return []string{
		m.Disease,
		strconv.Itoa(m.Rank),
		m.CompoundID,
		m.CompoundName,
		strconv.FormatFloat(m.Similarity, 'f', precision, 64),
		strconv.Itoa(m.Enrichment),
	}
}

// IsUnknownName reports whether name must not be sent to a lookup.
func IsUnknownName(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || name == UnknownName
}

// Candidate is a compound index with its score.
type Candidate struct {
	Index int
	Score float64
}

// TopN returns up to n candidates ordered by descending score.  Equal scores
// keep ascending index order so results are reproducible.
func TopN(scores []float64, n int) []Candidate {
	if n <= 0 || len(scores) == 0 {
		return nil
	}
	cands := make([]Candidate, len(scores))
	for i, s := range scores {
		cands[i] = Candidate{Index: i, Score: s}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
	if n < len(cands) {
		cands = cands[:n]
	}
	return cands
}

//Personal.AI order the ending
