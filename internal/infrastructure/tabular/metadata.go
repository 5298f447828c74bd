package tabular

import (
	"strings"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// NameIndex maps compound identifiers to display names.  The first row
// for an identifier wins.
type NameIndex struct {
	names map[string]string
}

// NewNameIndex builds an index from id/name pairs, keeping first matches.
func NewNameIndex(pairs [][2]string) *NameIndex {
	idx := &NameIndex{names: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		idx.add(p[0], p[1])
	}
	return idx
}

func (n *NameIndex) add(id, name string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if _, seen := n.names[id]; !seen {
		n.names[id] = strings.TrimSpace(name)
	}
}

// DisplayName returns the name recorded for id.  ok is false when the id
// is unknown or its name is blank.
func (n *NameIndex) DisplayName(id string) (string, bool) {
	name, found := n.names[id]
	if !found || name == "" {
		return "", false
	}
	return name, true
}

// Len returns the number of distinct identifiers.
func (n *NameIndex) Len() int { return len(n.names) }

// LoadNameIndex reads the identifier and name columns of any CSV carrying
// them, typically the compound dataset.
func LoadNameIndex(path string) (*NameIndex, error) {
	cf, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer cf.Close()

	idx := &NameIndex{names: map[string]string{}}
	if cf.header == nil {
		return idx, nil
	}
	idCol, ok := cf.index[molecule.IDColumn]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeConfiguration, "%s has no %s column", path, molecule.IDColumn)
	}
	nameCol, hasName := cf.index[molecule.NameColumn]

	err = cf.each(func(_ int, row []string) error {
		name := ""
		if hasName {
			name = row[nameCol]
		}
		idx.add(row[idCol], name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

//Personal.AI order the ending
