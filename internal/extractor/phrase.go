package extractor

import (
	"strings"

	"skillalign/internal/chunker"
	"skillalign/internal/domain"
	"skillalign/internal/textutil"
)

const (
	TypeFullMatch = "full_match"
	TypeOneToken  = "one_token"
	TypeNgram     = "ngram"

	DefaultMinNgramScore  = 0.5
	DefaultMaxNgramTokens = 4
)

// PhraseConfig tunes a PhraseAnnotator.
type PhraseConfig struct {
	MinNgramScore  float64
	MaxNgramTokens int
}

type skillPhrase struct {
	id     string
	tokens []string
}

// PhraseAnnotator is a local n-gram matcher over a skill database.
// Multi-token skills found verbatim are full matches; single-token hits and
// partially overlapping n-grams led by a skill token are scored. Matching never
// crosses a sentence.
type PhraseAnnotator struct {
	chunker   *chunker.SentenceChunker
	skills    []skillPhrase
	byFirst   map[string][]int
	byToken   map[string][]int
	minScore  float64
	maxTokens int
}

// NewPhraseAnnotator indexes db. Duplicate phrases keep the first entry.
func NewPhraseAnnotator(db []domain.TaxonomyEntry, cfg PhraseConfig, ch *chunker.SentenceChunker) *PhraseAnnotator {
	if cfg.MinNgramScore <= 0 {
		cfg.MinNgramScore = DefaultMinNgramScore
	}
	if cfg.MaxNgramTokens <= 0 {
		cfg.MaxNgramTokens = DefaultMaxNgramTokens
	}
	if ch == nil {
		ch = chunker.NewSentenceChunker(1, 0)
	}
	a := &PhraseAnnotator{
		chunker:   ch,
		byFirst:   make(map[string][]int),
		byToken:   make(map[string][]int),
		minScore:  cfg.MinNgramScore,
		maxTokens: cfg.MaxNgramTokens,
	}
	seen := make(map[string]struct{})
	for _, entry := range db {
		norm := textutil.Normalize(entry.Name)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		tokens := textutil.Tokens(norm)
		idx := len(a.skills)
		a.skills = append(a.skills, skillPhrase{id: entry.ID, tokens: tokens})
		a.byFirst[tokens[0]] = append(a.byFirst[tokens[0]], idx)
		indexed := make(map[string]struct{})
		for _, tok := range tokens {
			if textutil.IsStopword(tok) {
				continue
			}
			if _, ok := indexed[tok]; ok {
				continue
			}
			indexed[tok] = struct{}{}
			a.byToken[tok] = append(a.byToken[tok], idx)
		}
	}
	return a
}

// Size returns the number of distinct indexed skill phrases.
func (a *PhraseAnnotator) Size() int { return len(a.skills) }

// Annotate finds skill phrases in text.
func (a *PhraseAnnotator) Annotate(text string) (domain.Annotations, error) {
	out := domain.Annotations{FullMatches: []domain.Annotation{}, NgramScored: []domain.Annotation{}}
	if strings.TrimSpace(text) == "" {
		return out, ErrEmptyText
	}
	offset := 0
	for _, sentence := range a.chunker.Sentences(text) {
		tokens := textutil.Tokens(textutil.Normalize(sentence))
		used := make([]bool, len(tokens))
		out.FullMatches = append(out.FullMatches, a.fullMatches(tokens, used, offset)...)
		out.NgramScored = append(out.NgramScored, a.ngrams(tokens, used, offset)...)
		offset += len(tokens)
	}
	return out, nil
}

func (a *PhraseAnnotator) fullMatches(tokens []string, used []bool, offset int) []domain.Annotation {
	var out []domain.Annotation
	for i := 0; i < len(tokens); {
		best := -1
		for _, idx := range a.byFirst[tokens[i]] {
			sk := a.skills[idx]
			if len(sk.tokens) < 2 || len(sk.tokens) > len(tokens)-i {
				continue
			}
			if !equalTokens(tokens[i:i+len(sk.tokens)], sk.tokens) {
				continue
			}
			if best < 0 || len(sk.tokens) > len(a.skills[best].tokens) {
				best = idx
			}
		}
		if best < 0 {
			i++
			continue
		}
		n := len(a.skills[best].tokens)
		out = append(out, a.annotation(best, tokens, i, n, offset, 1, TypeFullMatch))
		for j := i; j < i+n; j++ {
			used[j] = true
		}
		i += n
	}
	return out
}

func (a *PhraseAnnotator) ngrams(tokens []string, used []bool, offset int) []domain.Annotation {
	var out []domain.Annotation
	for i := 0; i < len(tokens); {
		if used[i] || textutil.IsStopword(tokens[i]) {
			i++
			continue
		}
		matched := 0
		for n := min(a.maxTokens, len(tokens)-i); n >= 1; n-- {
			window := tokens[i : i+n]
			if !free(used[i:i+n]) || textutil.IsStopword(window[n-1]) {
				continue
			}
			best, score := a.bestCandidate(window)
			if best < 0 || score < a.minScore {
				continue
			}
			kind := TypeNgram
			if n == 1 {
				kind = TypeOneToken
			}
			out = append(out, a.annotation(best, tokens, i, n, offset, score, kind))
			for j := i; j < i+n; j++ {
				used[j] = true
			}
			matched = n
			break
		}
		if matched == 0 {
			i++
			continue
		}
		i += matched
	}
	return out
}

// bestCandidate scores every skill of the window's length that contains the
// window's first token. Ties keep the earliest skill.
func (a *PhraseAnnotator) bestCandidate(window []string) (int, float64) {
	best, bestScore := -1, 0.0
	for _, idx := range a.byToken[window[0]] {
		sk := a.skills[idx]
		if len(sk.tokens) != len(window) {
			continue
		}
		if score := overlap(window, sk.tokens); score > bestScore {
			best, bestScore = idx, score
		}
	}
	return best, bestScore
}

func (a *PhraseAnnotator) annotation(skill int, tokens []string, start, n, offset int, score float64, kind string) domain.Annotation {
	ids := make([]int, n)
	for j := range ids {
		ids[j] = offset + start + j
	}
	return domain.Annotation{
		SkillID:      a.skills[skill].id,
		DocNodeValue: strings.Join(tokens[start:start+n], " "),
		Score:        score,
		DocNodeID:    ids,
		Type:         kind,
	}
}

// overlap is the share of the skill's distinct content tokens present in window.
func overlap(window, skill []string) float64 {
	have := make(map[string]struct{}, len(window))
	for _, t := range window {
		have[t] = struct{}{}
	}
	total, hit := 0, 0
	seen := make(map[string]struct{}, len(skill))
	for _, t := range skill {
		if textutil.IsStopword(t) {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		total++
		if _, ok := have[t]; ok {
			hit++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func free(used []bool) bool {
	for _, u := range used {
		if u {
			return false
		}
	}
	return true
}
