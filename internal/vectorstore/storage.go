package vectorstore

import "skillalign/internal/domain"

// Storage holds taxonomy entry vectors and answers similarity queries over them.
// An index lives for one alignment pass; Init resets it.
type Storage interface {
	Init(dimension int) error
	Upsert(entries []domain.TaxonomyEntry, vectors [][]float64) error
	// Scan returns the similarity of vector to every stored entry, in insertion order.
	Scan(vector []float64) ([]float64, error)
	Search(vector []float64, topK int) ([]domain.ScoredEntry, error)
	Len() int
}
