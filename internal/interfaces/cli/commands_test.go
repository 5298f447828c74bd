package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OrphaMine/internal/domain/molecule"
	domain "github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// runCLI executes args against a fresh command tree and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	s := &session{}
	cmd := newRootCommand(s)
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	s.cli.Close()
	return out.String(), err
}

// catalogServer serves total molecules CHEMBL1..CHEMBLn and counts detail
// requests.
func catalogServer(t *testing.T, total int, details *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/molecule.json":
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			stubs := []map[string]string{}
			for i := offset; i < offset+limit && i < total; i++ {
				stubs = append(stubs, map[string]string{"molecule_chembl_id": fmt.Sprintf("CHEMBL%d", i+1)})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"molecules": stubs})
		case strings.HasPrefix(r.URL.Path, "/api/molecule/"):
			details.Add(1)
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/molecule/"), ".json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"molecule_chembl_id":  id,
				"pref_name":           "NAME " + id,
				"molecule_structures": map[string]string{"canonical_smiles": "CCO"},
				"molecule_properties": map[string]interface{}{"alogp": "0.5", "hba": 1},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	dir        string
	configPath string
	dataset    string
	matches    string
	metrics    string
}

func newTestEnv(t *testing.T, catalogURL string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "orphamine.yaml"),
		dataset:    filepath.Join(dir, "data", "compounds.csv"),
		matches:    filepath.Join(dir, "results", "matches.csv"),
		metrics:    filepath.Join(dir, "metrics.prom"),
	}
	if catalogURL == "" {
		catalogURL = "http://127.0.0.1:1/api"
	}
	yaml := fmt.Sprintf(`log:
  level: error
catalog:
  base_url: %s
  list_timeout: 5s
  detail_timeout: 5s
ingest:
  dataset_path: %s
  target_count: 10
  page_size: 5
  concurrency: 3
  listing_backoff_initial: 10ms
  listing_backoff_max: 50ms
ranking:
  top_n: 2
  output_path: %s
  disease_embeddings: %s
  compound_embeddings: %s
  metadata_path: %s
enrichment:
  disabled: true
metrics:
  textfile_path: %s
`, catalogURL, env.dataset, env.matches,
		filepath.Join(dir, "disease_embeddings.csv"),
		filepath.Join(dir, "compound_embeddings.csv"),
		filepath.Join(dir, "metadata.csv"),
		env.metrics)
	require.NoError(t, os.WriteFile(env.configPath, []byte(yaml), 0o644))
	return env
}

func TestFetchCommand_GrowsAndResumesDataset(t *testing.T) {
	var details atomic.Int64
	srv := catalogServer(t, 25, &details)
	env := newTestEnv(t, srv.URL+"/api")

	out, err := runCLI(t, "--config", env.configPath, "-o", "json", "fetch")
	require.NoError(t, err)

	var first fetchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, 10, first.Written)
	assert.Equal(t, 10, first.Added)
	assert.Equal(t, 2, first.Pages)
	assert.False(t, first.Interrupted)
	assert.Equal(t, int64(10), details.Load())

	prom, err := os.ReadFile(env.metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "orphamine_catalog_pages_listed_total 2")

	// Target already met: nothing is requested again.
	out, err = runCLI(t, "--config", env.configPath, "-o", "json", "fetch")
	require.NoError(t, err)
	var second fetchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, 10, second.Written)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, int64(10), details.Load())

	// A flag override resumes from the committed offset.
	out, err = runCLI(t, "--config", env.configPath, "-o", "json", "fetch", "--target", "12")
	require.NoError(t, err)
	var third fetchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &third))
	assert.Equal(t, 15, third.Written)
	assert.Equal(t, 5, third.Added)
	assert.Equal(t, int64(15), details.Load())

	records, err := tabular.NewDatasetStore(env.dataset, nil).ReadMolecules(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 15)
	assert.Equal(t, "CHEMBL1", records[0].ChEMBLID)
	assert.Equal(t, "CHEMBL15", records[14].ChEMBLID)
}

func TestFetchCommand_InvalidOverride(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := runCLI(t, "--config", env.configPath, "fetch", "--page-size", "5000")
	require.Error(t, err)
	assert.Equal(t, errors.ExitConfiguration, errors.ExitCode(err))
}

func writeRankInputs(t *testing.T, env *testEnv) {
	t.Helper()
	diseases, err := domain.NewEmbeddingSet([]string{"Fabry disease"}, [][]float64{{1, 0}})
	require.NoError(t, err)
	compounds, err := domain.NewEmbeddingSet(
		[]string{"c1", "c2", "c3"},
		[][]float64{{1, 0}, {0, 1}, {0.6, 0.8}})
	require.NoError(t, err)
	require.NoError(t, tabular.WriteEmbeddingSet(filepath.Join(env.dir, "disease_embeddings.csv"), diseases))
	require.NoError(t, tabular.WriteEmbeddingSet(filepath.Join(env.dir, "compound_embeddings.csv"), compounds))
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "metadata.csv"),
		[]byte("molecule_chembl_id,pref_name\nc1,ALPHA\nc3,GAMMA\n"), 0o644))
}

func TestRankCommand_WritesMatchTable(t *testing.T) {
	env := newTestEnv(t, "")
	writeRankInputs(t, env)

	out, err := runCLI(t, "--config", env.configPath, "-o", "json", "rank")
	require.NoError(t, err)

	var summary rankSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Diseases)
	assert.Equal(t, 3, summary.Compounds)
	assert.Equal(t, 2, summary.Matches)
	assert.Equal(t, 0, summary.Degraded)

	data, err := os.ReadFile(env.matches)
	require.NoError(t, err)
	assert.Equal(t,
		"disease,compound_rank,compound_chembl_id,compound_name,similarity_score,pubmed_articles\n"+
			"Fabry disease,1,c1,ALPHA,1.000000,0\n"+
			"Fabry disease,2,c3,GAMMA,0.600000,0\n",
		string(data))
}

func TestRankCommand_TablePathAndOutputFormatFlags(t *testing.T) {
	env := newTestEnv(t, "")
	writeRankInputs(t, env)
	table := filepath.Join(env.dir, "elsewhere", "ranked.csv")

	out, err := runCLI(t, "--config", env.configPath, "rank", "--output", "json", "--out", table)
	require.NoError(t, err)

	var summary rankSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, table, summary.OutputPath)
	assert.FileExists(t, table)
	assert.NoFileExists(t, env.matches)
	assert.NoFileExists(t, filepath.Join(env.dir, "json"))

	out, err = runCLI(t, "--config", env.configPath, "rank", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, env.matches, summary.OutputPath)
}

func TestRankCommand_MissingInputExitsWithConfigurationStatus(t *testing.T) {
	env := newTestEnv(t, "")
	writeRankInputs(t, env)

	err := Execute(context.Background(), []string{
		"--config", env.configPath, "rank", "--diseases", filepath.Join(env.dir, "absent.csv"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInputMissing))
	assert.Equal(t, errors.ExitConfiguration, errors.ExitCode(err))
	assert.NoFileExists(t, env.matches)
}

func TestMatchesCommand_Filters(t *testing.T) {
	env := newTestEnv(t, "")
	writeRankInputs(t, env)
	_, err := runCLI(t, "--config", env.configPath, "rank")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", env.configPath, "-o", "json", "matches",
		"--disease", "FABRY DISEASE", "--min-score", "0.7", "--links")
	require.NoError(t, err)

	var views []matchView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "c1", views[0].CompoundID)
	assert.Equal(t, "ALPHA", views[0].CompoundName)
	assert.Equal(t, "https://www.ebi.ac.uk/chembl/compound_report_card/c1/", views[0].ReportCard)

	out, err = runCLI(t, "--config", env.configPath, "matches", "--name", "gam")
	require.NoError(t, err)
	assert.Contains(t, out, "GAMMA")
	assert.NotContains(t, out, "ALPHA")

	out, err = runCLI(t, "--config", env.configPath, "-o", "text", "matches", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "Fabry disease\t#1\tc1\tALPHA\t1.000000\t0\n", out)
}

func TestMatchesCommand_MissingTable(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := runCLI(t, "--config", env.configPath, "matches")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInputMissing))
}

func TestEmbedCommand_WritesBothFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		vec := []float64{float64(len(req.Prompt)), 0, 1}
		if req.Model == "chemberta" {
			vec = []float64{1, float64(len(req.Prompt))}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": vec})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("ORPHAMINE_EMBEDDING_BASE_URL", srv.URL)

	env := newTestEnv(t, "")
	alogp := 0.5
	store := tabular.NewDatasetStore(env.dataset, nil)
	require.NoError(t, store.AppendChunk(context.Background(), []*molecule.Molecule{
		{ChEMBLID: "m1", SMILES: "CCO"},
		{ChEMBLID: "m2", SMILES: "C"},
		{ChEMBLID: "m3", ALogP: &alogp},
	}))
	diseaseList := filepath.Join(env.dir, "diseases.csv")
	require.NoError(t, os.WriteFile(diseaseList,
		[]byte("name\nFabry disease\nfabry disease\nGaucher disease\n"), 0o644))

	compoundsOut := filepath.Join(env.dir, "out", "compounds.csv")
	diseasesOut := filepath.Join(env.dir, "out", "diseases.csv")
	_, err := runCLI(t, "--config", env.configPath, "-o", "json", "embed",
		"--dataset", env.dataset,
		"--diseases-list", diseaseList,
		"--compounds-out", compoundsOut,
		"--diseases-out", diseasesOut)
	require.NoError(t, err)

	compounds, err := tabular.ReadEmbeddingSet(compoundsOut)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, compounds.Keys())
	assert.Equal(t, 2, compounds.Dim())

	diseases, err := tabular.ReadEmbeddingSet(diseasesOut)
	require.NoError(t, err)
	assert.Equal(t, 2, diseases.Len())
	assert.Equal(t, 3, diseases.Dim())
}

func TestFilterMatches_NoFilters(t *testing.T) {
	records := []domain.MatchRecord{
		{Disease: "A", Rank: 1, CompoundID: "c1", CompoundName: "ONE", Similarity: 0.9},
		{Disease: "B", Rank: 1, CompoundID: "c2", CompoundName: "TWO", Similarity: 0.1},
	}
	views := filterMatches(records, &matchesOptions{})
	require.Len(t, views, 2)
	assert.Empty(t, views[0].ReportCard)
}

//Personal.AI order the ending
