package tabular

import (
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// WriteMatchTable atomically writes the ranked matches of one run with
// scores rounded to precision decimals.
func WriteMatchTable(path string, records []ranking.MatchRecord, precision int) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return writeCSV(w, ranking.MatchColumns, func(emit func([]string) error) error {
			for _, r := range records {
				if err := emit(r.Row(precision)); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// ReadMatchTable loads a match table.
func ReadMatchTable(path string) ([]ranking.MatchRecord, error) {
	cf, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer cf.Close()
	if cf.header == nil {
		return nil, nil
	}
	for _, col := range ranking.MatchColumns {
		if _, ok := cf.index[col]; !ok {
			return nil, errors.Newf(errors.ErrCodeConfiguration, "%s has no %s column", path, col)
		}
	}

	var out []ranking.MatchRecord
	err = cf.each(func(line int, row []string) error {
		get := func(col string) string { return strings.TrimSpace(row[cf.index[col]]) }
		rank, err1 := strconv.Atoi(get("compound_rank"))
		score, err2 := strconv.ParseFloat(get("similarity_score"), 64)
		count, err3 := strconv.Atoi(get("pubmed_articles"))
		for _, e := range []error{err1, err2, err3} {
			if e != nil {
				return errors.Wrapf(e, errors.ErrCodeValidation, "%s line %d", path, line)
			}
		}
		out = append(out, ranking.MatchRecord{
			Disease:      row[cf.index["disease"]],
			Rank:         rank,
			CompoundID:   get("compound_chembl_id"),
			CompoundName: row[cf.index["compound_name"]],
			Similarity:   score,
			Enrichment:   count,
		})
		return nil
	})
	return out, err
}

//Personal.AI order the ending
