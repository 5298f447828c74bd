package ranking

import "math"

// Norm returns the Euclidean length of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns (a·b)/(‖a‖‖b‖).  A zero-norm input, or any non-finite
// intermediate, yields 0.  a and b must have equal length.
func Cosine(a, b []float64) float64 {
	return cosineWithNorms(a, b, Norm(a), Norm(b))
}

func cosineWithNorms(a, b []float64, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	sim := dot / (na * nb)
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

// Scorer computes cosine similarity of query vectors against a fixed
// compound set, caching the compound norms.
type Scorer struct {
	set   *EmbeddingSet
	norms []float64
}

// NewScorer precomputes norms for every vector in set.
func NewScorer(set *EmbeddingSet) *Scorer {
	norms := make([]float64, set.Len())
	for i := range norms {
		norms[i] = Norm(set.Vector(i))
	}
	return &Scorer{set: set, norms: norms}
}

// Scores returns the similarity of query against every vector of the set,
// indexed like the set.
func (s *Scorer) Scores(query []float64) []float64 {
	nq := Norm(query)
	out := make([]float64, s.set.Len())
	for i := range out {
		out[i] = cosineWithNorms(query, s.set.Vector(i), nq, s.norms[i])
	}
	return out
}

//Personal.AI order the ending
