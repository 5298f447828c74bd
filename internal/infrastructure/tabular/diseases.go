package tabular

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

// diseaseColumns are the header names recognised in a disease list CSV.
var diseaseColumns = []string{"name", "disease", "disease_name"}

// NormalizeDiseaseName applies NFKC normalisation and collapses whitespace.
func NormalizeDiseaseName(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// ReadDiseaseList loads disease names.  A CSV whose header contains one of
// name/disease/disease_name is read by that column; anything else is read
// as one name per line.  Names are normalised, blanks dropped, and
// case-insensitive duplicates removed keeping the first spelling.
func ReadDiseaseList(path string) ([]string, error) {
	first, err := firstLine(path)
	if err != nil {
		return nil, err
	}

	var raw []string
	if col := matchDiseaseColumn(first); col != "" {
		cf, err := openCSV(path)
		if err != nil {
			return nil, err
		}
		defer cf.Close()
		i := 0
		for j, h := range cf.header {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				i = j
				break
			}
		}
		err = cf.each(func(_ int, row []string) error {
			raw = append(raw, row[i])
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeDatasetIO, "open %s", path)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			raw = append(raw, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeDatasetIO, "read %s", path)
		}
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		name := NormalizeDiseaseName(r)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrCodeInputMissing, "disease list %s not found", path)
		}
		return "", errors.Wrapf(err, errors.ErrCodeDatasetIO, "open %s", path)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return trimBOM(sc.Text()), nil
	}
	return "", sc.Err()
}

func matchDiseaseColumn(headerLine string) string {
	for _, cell := range strings.Split(headerLine, ",") {
		cell = strings.ToLower(strings.Trim(strings.TrimSpace(cell), `"`))
		for _, c := range diseaseColumns {
			if cell == c {
				return c
			}
		}
	}
	return ""
}

//Personal.AI order the ending
