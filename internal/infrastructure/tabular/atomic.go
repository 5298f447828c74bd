// Package tabular implements the flat-file persistence of the pipeline: the
// append-only compound dataset, embedding files, the ranked match table and
// the disease list.  All files are header-first CSV.
package tabular

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

// WriteFileAtomic writes path through a temporary sibling file that is
// synced and renamed into place, so readers observe either the previous
// content or the complete new content.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "write %s", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "sync %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "close %s", path)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "chmod %s", path)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "rename into %s", path)
	}
	syncDir(dir)
	return nil
}

// syncDir persists a rename on filesystems that need it; failures are ignored
// because some platforms cannot fsync a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// writeCSV renders header and rows with encoding/csv.
func writeCSV(w io.Writer, header []string, rows func(emit func([]string) error) error) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "write header")
	}
	if err := rows(cw.Write); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "write rows")
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "flush csv")
	}
	return nil
}

// csvFile is an opened header-first CSV file.
type csvFile struct {
	f      *os.File
	r      *csv.Reader
	header []string
	index  map[string]int
}

// openCSV opens path and reads its header.  A missing file returns an
// ErrCodeInputMissing error; an empty file yields a nil header.
func openCSV(path string) (*csvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrCodeInputMissing, "input file %s not found", path)
		}
		return nil, errors.Wrapf(err, errors.ErrCodeDatasetIO, "open %s", path)
	}
	r := csv.NewReader(bufio.NewReader(f))
	r.ReuseRecord = false
	header, err := r.Read()
	if err == io.EOF {
		return &csvFile{f: f, r: r, index: map[string]int{}}, nil
	}
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, errors.ErrCodeDatasetIO, "read header of %s", path)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return &csvFile{f: f, r: r, header: header, index: idx}, nil
}

func (c *csvFile) Close() error { return c.f.Close() }

// each calls fn for every data row with its 1-based line number.
func (c *csvFile) each(fn func(line int, row []string) error) error {
	if c.header == nil {
		return nil
	}
	for {
		row, err := c.r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetIO, "parse csv row")
		}
		line, _ := c.r.FieldPos(0)
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func trimBOM(s string) string {
	const bom = "\uFEFF"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

//Personal.AI order the ending
