package memory

import (
	"errors"
	"sort"
	"sync"

	"skillalign/internal/domain"
	"skillalign/internal/embedding"
)

var (
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrLengthMismatch    = errors.New("entries and vectors length mismatch")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Storage is an in-memory taxonomy index using brute-force cosine similarity.
// Entries keep their insertion order, duplicates included.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	entries   []domain.TaxonomyEntry
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.entries = nil
	return nil
}

func (s *Storage) Upsert(entries []domain.TaxonomyEntry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return ErrDimensionMismatch
		}
	}
	s.entries = append(s.entries, entries...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Storage) Scan(vector []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = embedding.CosineSimilarity(vector, s.vectors[i])
	}
	return scores, nil
}

// Search returns the topK most similar entries, best first. Ties keep insertion order.
func (s *Storage) Search(vector []float64, topK int) ([]domain.ScoredEntry, error) {
	if topK <= 0 {
		topK = 5
	}
	scores, err := s.Scan(vector)
	if err != nil {
		return nil, err
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.ScoredEntry, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.ScoredEntry{Entry: s.entries[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
