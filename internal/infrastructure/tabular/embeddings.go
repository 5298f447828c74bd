package tabular

import (
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// EmbeddingKeyColumn is the first column of an embedding file.
const EmbeddingKeyColumn = "key"

// ReadEmbeddingSet loads a file written by WriteEmbeddingSet.  A missing
// file is an ErrCodeInputMissing error.  An empty file and a file holding
// only the key column header are both empty sets.
func ReadEmbeddingSet(path string) (*ranking.EmbeddingSet, error) {
	cf, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer cf.Close()

	if cf.header == nil {
		return ranking.NewEmbeddingSet(nil, nil)
	}
	if cf.header[0] != EmbeddingKeyColumn {
		return nil, errors.Newf(errors.ErrCodeConfiguration,
			"%s is not an embedding file: header must start with %q", path, EmbeddingKeyColumn)
	}

	var keys []string
	var vectors [][]float64
	err = cf.each(func(line int, row []string) error {
		vec := make([]float64, len(row)-1)
		for i, cell := range row[1:] {
			v, perr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if perr != nil {
				return errors.Wrapf(perr, errors.ErrCodeConfiguration, "%s line %d column %d", path, line, i+1)
			}
			vec[i] = v
		}
		keys = append(keys, row[0])
		vectors = append(vectors, vec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ranking.NewEmbeddingSet(keys, vectors)
}

// WriteEmbeddingSet atomically writes set to path.
func WriteEmbeddingSet(path string, set *ranking.EmbeddingSet) error {
	header := make([]string, set.Dim()+1)
	header[0] = EmbeddingKeyColumn
	for i := 1; i < len(header); i++ {
		header[i] = "v" + strconv.Itoa(i-1)
	}
	return WriteFileAtomic(path, func(w io.Writer) error {
		return writeCSV(w, header, func(emit func([]string) error) error {
			row := make([]string, len(header))
			for i := 0; i < set.Len(); i++ {
				row[0] = set.Key(i)
				for j, v := range set.Vector(i) {
					row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
				}
				if err := emit(row); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

//Personal.AI order the ending
