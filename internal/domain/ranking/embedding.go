// Package ranking holds the value types and pure algorithms of similarity
// ranking: embedding sets, cosine similarity, top-N selection and match
// records.
package ranking

import (
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// EmbeddingSet pairs keys with their vectors.  The two slices are kept
// private so the positional association can only change as a unit.
type EmbeddingSet struct {
	keys    []string
	vectors [][]float64
	dim     int
}

// NewEmbeddingSet validates that keys and vectors line up and that every
// vector has the same dimension.  An empty set is valid and has dimension 0.
func NewEmbeddingSet(keys []string, vectors [][]float64) (*EmbeddingSet, error) {
	if len(keys) != len(vectors) {
		return nil, errors.Newf(errors.ErrCodeConfiguration,
			"embedding set has %d keys but %d vectors", len(keys), len(vectors))
	}
	s := &EmbeddingSet{keys: keys, vectors: vectors}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, errors.Newf(errors.ErrCodeConfiguration, "empty vector for key %q", keys[i])
		}
		if i == 0 {
			s.dim = len(v)
			continue
		}
		if len(v) != s.dim {
			return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
				"vector for key %q has dimension %d, expected %d", keys[i], len(v), s.dim)
		}
	}
	return s, nil
}

// Len returns the number of entries.
func (s *EmbeddingSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Dim returns the shared vector dimension, 0 for an empty set.
func (s *EmbeddingSet) Dim() int {
	if s == nil {
		return 0
	}
	return s.dim
}

// Key returns the key at position i.
func (s *EmbeddingSet) Key(i int) string { return s.keys[i] }

// Vector returns the vector at position i.  Callers must not modify it.
func (s *EmbeddingSet) Vector(i int) []float64 { return s.vectors[i] }

// Keys returns a copy of the key list.
func (s *EmbeddingSet) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

//Personal.AI order the ending
