package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// DatasetStore is the append-only compound dataset.  Each AppendChunk call
// writes its rows with a single write followed by fsync; a write torn by a
// crash leaves an unterminated last line, which LoadCheckpoint truncates
// before anything else reads the file.
type DatasetStore struct {
	path   string
	logger logging.Logger
	mu     sync.Mutex
}

// NewDatasetStore returns a store for the CSV file at path.
func NewDatasetStore(path string, logger logging.Logger) *DatasetStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DatasetStore{path: path, logger: logger.Named("dataset")}
}

// Path returns the dataset file path.
func (s *DatasetStore) Path() string { return s.path }

// LoadCheckpoint rebuilds the set of identifiers already present in the
// dataset.  A missing file yields an empty set.
func (s *DatasetStore) LoadCheckpoint(ctx context.Context) (*molecule.CheckpointSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repairTail(); err != nil {
		return nil, err
	}

	cf, err := openCSV(s.path)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeInputMissing) {
			return molecule.NewCheckpointSet(), nil
		}
		return nil, err
	}
	defer cf.Close()

	if cf.header == nil {
		return molecule.NewCheckpointSet(), nil
	}
	if err := checkHeader(cf.header); err != nil {
		return nil, err
	}

	set := molecule.NewCheckpointSet()
	idCol := cf.index[molecule.IDColumn]
	err = cf.each(func(line int, row []string) error {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if id := strings.TrimSpace(row[idCol]); id != "" {
			set.Add(id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("checkpoint loaded", logging.String("path", s.path), logging.Int("ids", set.Len()))
	return set, nil
}

// AppendChunk durably appends records as one unit.  The header is written
// when the file is new or empty.  On failure the file is truncated back to
// its previous length when possible.
func (s *DatasetStore) AppendChunk(ctx context.Context, records []*molecule.Molecule) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "create dataset directory for %s", s.path)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "open dataset %s", s.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "stat dataset %s", s.path)
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = cw.Write(molecule.Columns)
	}
	for _, rec := range records {
		_ = cw.Write(singleLine(rec.Row()))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "encode chunk")
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Truncate(info.Size())
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "append %d records to %s", len(records), s.path)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "sync dataset %s", s.path)
	}
	return nil
}

// ReadMolecules returns every parseable record in file order.  Rows that do
// not parse are skipped with a warning.
func (s *DatasetStore) ReadMolecules(ctx context.Context) ([]*molecule.Molecule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := openCSV(s.path)
	if err != nil {
		return nil, err
	}
	defer cf.Close()
	if cf.header == nil {
		return nil, nil
	}
	if _, ok := cf.index[molecule.IDColumn]; !ok {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "%s has no %s column", s.path, molecule.IDColumn)
	}

	var out []*molecule.Molecule
	err = cf.each(func(line int, row []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := make(map[string]string, len(cf.header))
		for i, h := range cf.header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		m, perr := molecule.FromRecord(rec)
		if perr != nil {
			s.logger.Warn("skipping unparseable dataset row", logging.Int("line", line), logging.Err(perr))
			return nil
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// repairTail truncates an unterminated final line left by an interrupted
// append.  Must be called with mu held.
func (s *DatasetStore) repairTail() error {
	f, err := os.OpenFile(s.path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "open dataset %s", s.path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "stat dataset %s", s.path)
	}
	size := info.Size()
	if size == 0 {
		return nil
	}

	keep, err := lastNewlineEnd(f, size)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "scan dataset %s", s.path)
	}
	if keep == size {
		return nil
	}
	if err := f.Truncate(keep); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "truncate torn tail of %s", s.path)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatasetIO, "sync dataset %s", s.path)
	}
	s.logger.Warn("truncated incomplete trailing row",
		logging.String("path", s.path), logging.Int64("bytes_dropped", size-keep))
	return nil
}

// lastNewlineEnd returns the offset just past the last '\n' in the first
// size bytes of f, or 0 when there is none.
func lastNewlineEnd(f io.ReaderAt, size int64) (int64, error) {
	const block = 64 * 1024
	buf := make([]byte, block)
	end := size
	for end > 0 {
		start := end - block
		if start < 0 {
			start = 0
		}
		n, err := f.ReadAt(buf[:end-start], start)
		if err != nil && err != io.EOF {
			return 0, err
		}
		if i := bytes.LastIndexByte(buf[:n], '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

// checkHeader requires the existing file to use the current column layout,
// since appended rows are positional.
func checkHeader(header []string) error {
	if len(header) != len(molecule.Columns) {
		return errors.Newf(errors.ErrCodeConfiguration,
			"dataset header has %d columns, expected %d", len(header), len(molecule.Columns))
	}
	for i, col := range molecule.Columns {
		if strings.TrimSpace(header[i]) != col {
			return errors.Newf(errors.ErrCodeConfiguration,
				"dataset column %d is %q, expected %q", i, header[i], col)
		}
	}
	return nil
}

// singleLine keeps every record on one physical line so tail repair can
// reason in lines.
func singleLine(row []string) []string {
	for i, v := range row {
		if strings.ContainsAny(v, "\r\n") {
			row[i] = strings.Join(strings.Fields(v), " ")
		}
	}
	return row
}

//Personal.AI order the ending
