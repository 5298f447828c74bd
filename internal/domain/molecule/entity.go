// Package molecule provides the domain model for compounds ingested from the
// remote catalog.  A Molecule is a typed record with explicit optional fields;
// anything the catalog returns outside this schema is ignored, and a record
// missing its identifier or every modeling feature is rejected at the boundary.
package molecule

import (
	"strconv"
	"strings"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

// IDColumn is the identifier column shared by the dataset, the metadata table
// and the compound embedding file.
const IDColumn = "molecule_chembl_id"

// NameColumn holds the compound display name.
const NameColumn = "pref_name"

// Columns is the dataset header, in file order.
var Columns = []string{
	IDColumn,
	NameColumn,
	"molecule_type",
	"max_phase",
	"structure_type",
	"first_approval",
	"alogp",
	"psa",
	"qed_weighted",
	"mw_freebase",
	"full_mwt",
	"hba",
	"hbd",
	"num_ro5_violations",
	"cx_logp",
	"smiles",
	"inchi",
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is one ingested compound.  Nil pointers and empty strings mean the
// catalog did not report the value.
type Molecule struct {
	ChEMBLID      string
	PrefName      string
	MoleculeType  string
	MaxPhase      *float64
	StructureType string
	FirstApproval *int

	ALogP            *float64
	PSA              *float64
	QEDWeighted      *float64
	MWFreebase       *float64
	FullMWT          *float64
	HBA              *int
	HBD              *int
	NumRo5Violations *int
	CXLogP           *float64

	SMILES string
	InChI  string
}

// HasModelingFeature reports whether the record carries at least one value
// usable downstream: a structure string or one of the core descriptors.
func (m *Molecule) HasModelingFeature() bool {
	return m.SMILES != "" || m.ALogP != nil || m.QEDWeighted != nil || m.MWFreebase != nil
}

// Validate rejects records that must never reach the dataset.
func (m *Molecule) Validate() error {
	if m == nil {
		return errors.RecordRejected("nil record")
	}
	if strings.TrimSpace(m.ChEMBLID) == "" {
		return errors.RecordRejected("missing molecule_chembl_id")
	}
	if strings.ContainsAny(m.ChEMBLID, ",\"\r\n") {
		return errors.RecordRejected("malformed molecule_chembl_id").WithDetail(m.ChEMBLID)
	}
	if !m.HasModelingFeature() {
		return errors.RecordRejected("no modeling feature present").WithDetail(m.ChEMBLID)
	}
	return nil
}

// DisplayName returns PrefName, or "" when the catalog gave none.
func (m *Molecule) DisplayName() string {
	return strings.TrimSpace(m.PrefName)
}

// Row renders the record in Columns order.
func (m *Molecule) Row() []string {
	return []string{
		m.ChEMBLID,
		m.PrefName,
		m.MoleculeType,
		formatFloat(m.MaxPhase),
		m.StructureType,
		formatInt(m.FirstApproval),
		formatFloat(m.ALogP),
		formatFloat(m.PSA),
		formatFloat(m.QEDWeighted),
		formatFloat(m.MWFreebase),
		formatFloat(m.FullMWT),
		formatInt(m.HBA),
		formatInt(m.HBD),
		formatInt(m.NumRo5Violations),
		formatFloat(m.CXLogP),
		m.SMILES,
		m.InChI,
	}
}

// FromRecord rebuilds a Molecule from a dataset row keyed by header names.
// Unknown columns are ignored and missing columns stay empty.
func FromRecord(rec map[string]string) (*Molecule, error) {
	m := &Molecule{
		ChEMBLID:      strings.TrimSpace(rec[IDColumn]),
		PrefName:      rec[NameColumn],
		MoleculeType:  rec["molecule_type"],
		StructureType: rec["structure_type"],
		SMILES:        strings.TrimSpace(rec["smiles"]),
		InChI:         strings.TrimSpace(rec["inchi"]),
	}

	var err error
	floats := []struct {
		col string
		dst **float64
	}{
		{"max_phase", &m.MaxPhase},
		{"alogp", &m.ALogP},
		{"psa", &m.PSA},
		{"qed_weighted", &m.QEDWeighted},
		{"mw_freebase", &m.MWFreebase},
		{"full_mwt", &m.FullMWT},
		{"cx_logp", &m.CXLogP},
	}
	for _, f := range floats {
		if *f.dst, err = ParseOptionalFloat(rec[f.col]); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeValidation, "column %s", f.col)
		}
	}

	ints := []struct {
		col string
		dst **int
	}{
		{"first_approval", &m.FirstApproval},
		{"hba", &m.HBA},
		{"hbd", &m.HBD},
		{"num_ro5_violations", &m.NumRo5Violations},
	}
	for _, f := range ints {
		if *f.dst, err = ParseOptionalInt(rec[f.col]); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeValidation, "column %s", f.col)
		}
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Optional scalar helpers
// ─────────────────────────────────────────────────────────────────────────────

// ParseOptionalFloat parses s; blank input yields nil.
func ParseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseOptionalInt parses s; blank input yields nil.  Integral floats such
// as "2.0" are accepted.
func ParseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if f != float64(int(f)) {
		return nil, strconv.ErrSyntax
	}
	v := int(f)
	return &v, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

//Personal.AI order the ending
