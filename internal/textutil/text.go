// Package textutil holds the normalisation and stop-word helpers shared by the
// lexical components (phrase annotator, tf-idf embedder).
package textutil

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases s, replaces everything but letters, digits, '+' and '#'
// with spaces and collapses runs of whitespace. "C++" and "C#" survive intact.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens splits an already normalised string on single spaces.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"we", "you", "our", "your", "their", "they", "i", "us", "who", "which", "what", "must", "have", "has", "all", "any", "other", "more", "also", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether the lower-case token is an English stop word.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
