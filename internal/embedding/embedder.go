package embedding

import "math"

// Embedder converts free text into a fixed-length numeric vector.
// Empty or unvectorizable input yields the zero vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
// Mismatched lengths, empty input and zero-magnitude vectors give 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
