// Package extractor turns free text into candidate skill phrases.
//
// The heavy lifting is done by an Annotator, the phrase-matching engine. The
// SkillExtractor only keeps the n-gram scored hits and never lets an engine
// failure escape: a bad input simply yields no skills.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"skillalign/internal/domain"
)

// ErrEmptyText is returned by annotators for blank input.
var ErrEmptyText = errors.New("empty text")

// Annotator finds skill phrases in text.
type Annotator interface {
	Annotate(text string) (domain.Annotations, error)
}

// SkillExtractor wraps an Annotator with failure isolation and deduplication.
type SkillExtractor struct {
	annotator          Annotator
	log                logrus.FieldLogger
	includeFullMatches bool
}

// Option customises a SkillExtractor.
type Option func(*SkillExtractor)

// WithFullMatches also collects full-match annotations, not only n-gram scored ones.
func WithFullMatches(include bool) Option {
	return func(e *SkillExtractor) { e.includeFullMatches = include }
}

// NewSkillExtractor creates an extractor over annotator.
func NewSkillExtractor(annotator Annotator, log logrus.FieldLogger, opts ...Option) *SkillExtractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &SkillExtractor{annotator: annotator, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the distinct doc_node_value of every n-gram scored annotation,
// in first-seen order. Annotation failures, panics included, are logged and
// produce an empty list.
func (e *SkillExtractor) Extract(text string) (skills []string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", fmt.Sprint(r)).Warn("skipping input, annotator panicked")
			skills = []string{}
		}
	}()

	ann, err := e.annotator.Annotate(text)
	if err != nil {
		e.log.WithError(err).Warn("skipping input, annotation failed")
		return []string{}
	}

	skills = []string{}
	seen := make(map[string]struct{})
	add := func(list []domain.Annotation) {
		for _, a := range list {
			v := strings.TrimSpace(a.DocNodeValue)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			skills = append(skills, v)
		}
	}
	if e.includeFullMatches {
		add(ann.FullMatches)
	}
	add(ann.NgramScored)
	return skills
}
