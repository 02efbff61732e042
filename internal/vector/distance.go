package vector

import (
	"fmt"
	"math"

	"github.com/custodia-labs/docpilot/internal/core/domain"
)

// Cosine computes the cosine similarity between two vectors.
// A zero-magnitude vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: cosine similarity %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

// CosineWithNorms computes cosine similarity from precomputed norms.
// Lengths must already match.
func CosineWithNorms(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	s := dot / (na * nb)
	if math.IsNaN(s) {
		return 0
	}
	return s
}

// Normalize scales v to unit length in place. Zero vectors are unchanged.
func Normalize(v []float32) {
	m := Magnitude(v)
	if m == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / m)
	}
}
