package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillalign/internal/domain"
)

func seeded(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.TaxonomyEntry{{Name: "Python", ID: "P1"}, {Name: "Java", ID: "J1"}, {Name: "Python", ID: "P2"}},
		[][]float64{{1, 0}, {0, 1}, {1, 0}},
	))
	return s
}

func TestScanKeepsInsertionOrder(t *testing.T) {
	s := seeded(t)
	scores, err := s.Scan([]float64{1, 0})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.InDelta(t, 1, scores[0], 1e-9)
	assert.InDelta(t, 0, scores[1], 1e-9)
	assert.InDelta(t, 1, scores[2], 1e-9)
}

func TestSearchTopK(t *testing.T) {
	s := seeded(t)
	res, err := s.Search([]float64{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "P1", res[0].Entry.ID)
	assert.Equal(t, "P2", res[1].Entry.ID)

	res, err = s.Search([]float64{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "J1", res[0].Entry.ID)
}

func TestUpsertValidation(t *testing.T) {
	s := NewStorage()
	require.ErrorIs(t, s.Init(0), ErrInvalidDimension)
	require.NoError(t, s.Init(2))
	require.ErrorIs(t, s.Upsert([]domain.TaxonomyEntry{{Name: "a"}}, nil), ErrLengthMismatch)
	require.ErrorIs(t, s.Upsert([]domain.TaxonomyEntry{{Name: "a"}}, [][]float64{{1, 2, 3}}), ErrDimensionMismatch)
}

func TestInitResets(t *testing.T) {
	s := seeded(t)
	assert.Equal(t, 3, s.Len())
	require.NoError(t, s.Init(2))
	assert.Equal(t, 0, s.Len())
	res, err := s.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}
