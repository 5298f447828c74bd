package tabular

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OrphaMine/internal/domain/ranking"
	apperrors "github.com/turtacn/OrphaMine/pkg/errors"
)

func TestWriteFileAtomic_FailureLeavesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEmbeddingSet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emb.csv")
	set, err := ranking.NewEmbeddingSet([]string{"a", "b"}, [][]float64{{1, 0.5}, {-2, 1e-7}})
	require.NoError(t, err)
	require.NoError(t, WriteEmbeddingSet(path, set))

	got, err := ReadEmbeddingSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Keys())
	assert.Equal(t, 2, got.Dim())
	assert.Equal(t, []float64{-2, 1e-7}, got.Vector(1))
}

func TestEmbeddingSet_EmptyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emb.csv")
	empty, err := ranking.NewEmbeddingSet(nil, nil)
	require.NoError(t, err)
	require.NoError(t, WriteEmbeddingSet(path, empty))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key\n", string(data))

	got, err := ReadEmbeddingSet(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 0, got.Dim())
}

func TestReadEmbeddingSet_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadEmbeddingSet(filepath.Join(dir, "missing.csv"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInputMissing))

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("key,v0\na,notanumber\n"), 0o644))
	_, err = ReadEmbeddingSet(bad)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfiguration))

	header := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(header, []byte("id,x\n"), 0o644))
	_, err = ReadEmbeddingSet(header)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfiguration))
}

func TestMatchTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "matches.csv")
	records := []ranking.MatchRecord{
		{Disease: "Fabry disease", Rank: 1, CompoundID: "CHEMBL1", CompoundName: "MIGALASTAT", Similarity: 0.91234567, Enrichment: 12},
		{Disease: "Fabry disease", Rank: 2, CompoundID: "CHEMBL2", CompoundName: ranking.UnknownName, Similarity: 0.5, Enrichment: 0},
	}
	require.NoError(t, WriteMatchTable(path, records, 4))

	got, err := ReadMatchTable(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.9123, got[0].Similarity)
	assert.Equal(t, 12, got[0].Enrichment)
	assert.Equal(t, ranking.UnknownName, got[1].CompoundName)
}

func TestLoadNameIndex_FirstMatchWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.csv")
	content := "molecule_chembl_id,pref_name,smiles\nCHEMBL1,FIRST,C\nCHEMBL1,SECOND,C\nCHEMBL2,,C\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	idx, err := LoadNameIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	name, ok := idx.DisplayName("CHEMBL1")
	assert.True(t, ok)
	assert.Equal(t, "FIRST", name)

	_, ok = idx.DisplayName("CHEMBL2")
	assert.False(t, ok)
	_, ok = idx.DisplayName("CHEMBL3")
	assert.False(t, ok)
}

func TestReadDiseaseList(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "diseases.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("\uFEFFid,Disease\n1,Fabry  disease\n2,fabry disease\n3,\n4,\"Gaucher disease, type 1\"\n"), 0o644))
	got, err := ReadDiseaseList(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fabry disease", "Gaucher disease, type 1"}, got)

	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("Pompe disease\n\nＡlport syndrome\n"), 0o644))
	got, err = ReadDiseaseList(plain)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pompe disease", "Alport syndrome"}, got)

	_, err = ReadDiseaseList(filepath.Join(dir, "none.csv"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInputMissing))
}

//Personal.AI order the ending
