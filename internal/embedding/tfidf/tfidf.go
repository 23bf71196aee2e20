// Package tfidf embeds text over the vocabulary of a skill table. It needs no
// model files, so it is the embedder of last resort when no word vectors or
// embedding API are available.
package tfidf

import (
	"errors"
	"math"
	"sort"

	"skillalign/internal/textutil"
)

var (
	// ErrNotPrepared is returned by Embed before Prepare has seen a skill table.
	ErrNotPrepared = errors.New("tfidf embedder not prepared")
	// ErrNoTerms is returned by Prepare when no skill name has a content word.
	ErrNoTerms = errors.New("skill names contain no indexable terms")
)

// term is one vocabulary column.
type term struct {
	column int
	weight float64
}

// Embedder weights the content words of a text by how rare they are among the
// skill names of the table it was prepared on. Words outside that table carry
// no weight, so two phrases only look alike if they share taxonomy wording.
type Embedder struct {
	terms map[string]term
}

// NewEmbedder creates an embedder that must be prepared before use.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare rebuilds the vocabulary from the names of a skill table. A name that
// occurs several times, as happens across the OSN files, counts once so that
// repetition does not make its words look common.
func (e *Embedder) Prepare(names []string) error {
	if len(names) == 0 {
		return errors.New("tfidf: empty skill table")
	}
	docFreq := make(map[string]int)
	distinct := make(map[string]struct{}, len(names))
	for _, name := range names {
		norm := textutil.Normalize(name)
		if _, dup := distinct[norm]; dup {
			continue
		}
		distinct[norm] = struct{}{}
		for word := range contentWords(norm) {
			docFreq[word]++
		}
	}
	if len(docFreq) == 0 {
		return ErrNoTerms
	}

	words := make([]string, 0, len(docFreq))
	for w := range docFreq {
		words = append(words, w)
	}
	sort.Strings(words)

	total := float64(len(distinct))
	terms := make(map[string]term, len(words))
	for i, w := range words {
		// smoothed idf, never zero
		terms[w] = term{column: i, weight: 1 + math.Log((1+total)/(1+float64(docFreq[w])))}
	}
	e.terms = terms
	return nil
}

// Dimension returns the vocabulary size of the last prepared table, 0 before Prepare.
func (e *Embedder) Dimension() int { return len(e.terms) }

// Embed returns the unit-length weighted term vector of text. Text sharing no
// content word with the skill table yields the zero vector.
func (e *Embedder) Embed(text string) ([]float64, error) {
	if e.terms == nil {
		return nil, ErrNotPrepared
	}
	vec := make([]float64, len(e.terms))
	counts := make(map[string]int)
	known := 0
	for _, w := range textutil.Tokens(textutil.Normalize(text)) {
		if _, ok := e.terms[w]; ok {
			counts[w]++
			known++
		}
	}
	if known == 0 {
		return vec, nil
	}
	var sumSq float64
	for w, n := range counts {
		t := e.terms[w]
		v := t.weight * float64(n) / float64(known)
		vec[t.column] = v
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// contentWords returns the distinct non-stop-word tokens of a normalised name.
func contentWords(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range textutil.Tokens(normalized) {
		if !textutil.IsStopword(w) {
			out[w] = struct{}{}
		}
	}
	return out
}
