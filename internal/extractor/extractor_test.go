package extractor

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"skillalign/internal/domain"
)

type stubAnnotator struct {
	ann   domain.Annotations
	err   error
	panic bool
}

func (s stubAnnotator) Annotate(string) (domain.Annotations, error) {
	if s.panic {
		panic("tokenizer exploded")
	}
	return s.ann, s.err
}

func TestExtractKeepsNgramScoredOnly(t *testing.T) {
	ann := domain.Annotations{
		FullMatches: []domain.Annotation{{DocNodeValue: "microsoft excel"}},
		NgramScored: []domain.Annotation{
			{DocNodeValue: "python"},
			{DocNodeValue: "sql"},
			{DocNodeValue: "python"},
			{DocNodeValue: "  "},
		},
	}
	e := NewSkillExtractor(stubAnnotator{ann: ann}, nil)
	assert.Equal(t, []string{"python", "sql"}, e.Extract("text"))

	e = NewSkillExtractor(stubAnnotator{ann: ann}, nil, WithFullMatches(true))
	assert.Equal(t, []string{"microsoft excel", "python", "sql"}, e.Extract("text"))
}

func TestExtractSwallowsAnnotatorErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := NewSkillExtractor(stubAnnotator{err: errors.New("bad input")}, logger)

	got := e.Extract("%%%")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	if assert.Len(t, hook.AllEntries(), 1) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	}
}

func TestExtractSwallowsAnnotatorPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := NewSkillExtractor(stubAnnotator{panic: true}, logger)

	got := e.Extract("anything")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, hook.AllEntries(), 1)
}
