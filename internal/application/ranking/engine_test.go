package ranking

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/OrphaMine/internal/domain/ranking"
	"github.com/turtacn/OrphaMine/internal/infrastructure/tabular"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

func mustSet(t *testing.T, keys []string, vectors [][]float64) *domain.EmbeddingSet {
	t.Helper()
	s, err := domain.NewEmbeddingSet(keys, vectors)
	require.NoError(t, err)
	return s
}

func scenarioSets(t *testing.T) (*domain.EmbeddingSet, *domain.EmbeddingSet) {
	diseases := mustSet(t, []string{"A", "B"}, [][]float64{{1, 0}, {0, 1}})
	compounds := mustSet(t, []string{"c1", "c2", "c3"}, [][]float64{{1, 0}, {0.9, 0.1}, {0, 1}})
	return diseases, compounds
}

func TestRank_Scenario(t *testing.T) {
	diseases, compounds := scenarioSets(t)
	names := tabular.NewNameIndex([][2]string{{"c1", "ONE"}, {"c3", "THREE"}})
	lookup := newFakeLookup(map[string]int{"ONE": 10, "THREE": 30})

	engine := NewEngine(fastEnricher(lookup), nil, WithParallelism(2))
	got, err := engine.Rank(context.Background(), diseases, compounds, names, 2)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, domain.MatchRecord{Disease: "A", Rank: 1, CompoundID: "c1", CompoundName: "ONE", Similarity: 1, Enrichment: 10}, got[0])
	assert.Equal(t, "A", got[1].Disease)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, "c2", got[1].CompoundID)
	assert.Equal(t, domain.UnknownName, got[1].CompoundName)
	assert.InDelta(t, 0.994, got[1].Similarity, 0.001)
	assert.Equal(t, 0, got[1].Enrichment)

	assert.Equal(t, "B", got[2].Disease)
	assert.Equal(t, "c3", got[2].CompoundID)
	assert.InDelta(t, 1.0, got[2].Similarity, 1e-12)
	assert.Equal(t, 30, got[2].Enrichment)
	assert.Equal(t, "c2", got[3].CompoundID)
	assert.InDelta(t, 0.110, got[3].Similarity, 0.001)

	// N/A is never looked up.
	assert.Equal(t, 0, lookup.calls[domain.UnknownName])
	assert.Equal(t, 2, lookup.total())
}

func TestRank_DeterministicAcrossParallelism(t *testing.T) {
	diseases, compounds := scenarioSets(t)
	a, err := NewEngine(nil, nil, WithParallelism(1)).Rank(context.Background(), diseases, compounds, nil, 3)
	require.NoError(t, err)
	b, err := NewEngine(nil, nil, WithParallelism(8)).Rank(context.Background(), diseases, compounds, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRank_OrderingProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const dim = 5
	var dKeys, cKeys []string
	var dVecs, cVecs [][]float64
	for i := 0; i < 6; i++ {
		dKeys = append(dKeys, fmt.Sprintf("disease-%d", i))
		dVecs = append(dVecs, randVec(rng, dim))
	}
	for i := 0; i < 40; i++ {
		cKeys = append(cKeys, fmt.Sprintf("c%d", i))
		v := randVec(rng, dim)
		if i > 0 && i%7 == 0 {
			v = cVecs[0] // duplicates produce ties
		}
		cVecs = append(cVecs, v)
	}
	diseases := mustSet(t, dKeys, dVecs)
	compounds := mustSet(t, cKeys, cVecs)

	for _, topN := range []int{1, 5, 40, 100} {
		got, err := NewEngine(nil, nil).Rank(context.Background(), diseases, compounds, nil, topN)
		require.NoError(t, err)

		k := min(topN, compounds.Len())
		require.Len(t, got, k*diseases.Len())
		for d := 0; d < diseases.Len(); d++ {
			rows := got[d*k : (d+1)*k]
			for i, r := range rows {
				assert.Equal(t, dKeys[d], r.Disease)
				assert.Equal(t, i+1, r.Rank)
				if i > 0 {
					prev := rows[i-1]
					assert.GreaterOrEqual(t, prev.Similarity, r.Similarity)
					if prev.Similarity == r.Similarity {
						assert.Less(t, indexOf(cKeys, prev.CompoundID), indexOf(cKeys, r.CompoundID))
					}
				}
			}
		}
	}
}

func TestRank_ZeroNormCompoundScoresZero(t *testing.T) {
	diseases := mustSet(t, []string{"A"}, [][]float64{{-1, 0}})
	compounds := mustSet(t, []string{"zero", "pos"}, [][]float64{{0, 0}, {1, 0}})

	got, err := NewEngine(nil, nil).Rank(context.Background(), diseases, compounds, nil, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "zero", got[0].CompoundID)
	assert.Equal(t, 0.0, got[0].Similarity)
	assert.Equal(t, -1.0, got[1].Similarity)
}

func TestRank_EmptyInputs(t *testing.T) {
	diseases, compounds := scenarioSets(t)
	empty := mustSet(t, nil, nil)

	got, err := NewEngine(nil, nil).Rank(context.Background(), empty, compounds, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NewEngine(nil, nil).Rank(context.Background(), diseases, nil, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRank_DimensionMismatch(t *testing.T) {
	diseases := mustSet(t, []string{"A"}, [][]float64{{1, 0, 0}})
	_, compounds := scenarioSets(t)

	lookup := newFakeLookup(nil)
	_, err := NewEngine(fastEnricher(lookup), nil).Rank(context.Background(), diseases, compounds, nil, 2)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDimensionMismatch))
	assert.Equal(t, 2, errors.ExitCode(err))
	assert.Equal(t, 0, lookup.total())
}

func TestRank_InvalidTopN(t *testing.T) {
	diseases, compounds := scenarioSets(t)
	_, err := NewEngine(nil, nil).Rank(context.Background(), diseases, compounds, nil, 0)
	assert.True(t, errors.IsConfiguration(err))
}

func TestRank_FailingEnrichmentStillProducesTable(t *testing.T) {
	diseases, compounds := scenarioSets(t)
	names := tabular.NewNameIndex([][2]string{{"c1", "ONE"}, {"c2", "TWO"}, {"c3", "THREE"}})
	lookup := newFakeLookup(nil)
	lookup.failAll = true

	engine := NewEngine(fastEnricher(lookup), nil)
	got, err := engine.Rank(context.Background(), diseases, compounds, names, 3)
	require.NoError(t, err)
	require.Len(t, got, 6)
	for _, r := range got {
		assert.Equal(t, 0, r.Enrichment)
	}
	assert.Equal(t, 3, engine.Enricher().Degraded())
}

func TestRank_Cancelled(t *testing.T) {
	diseases, compounds := scenarioSets(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil, nil).Rank(ctx, diseases, compounds, nil, 2)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCancelled))
}

func randVec(rng *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = math.Round((rng.Float64()*2-1)*100) / 100
	}
	return v
}

func indexOf(keys []string, k string) int {
	for i, v := range keys {
		if v == k {
			return i
		}
	}
	return -1
}

//Personal.AI order the ending
