package wordvec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDimension matches the 300-d vectors of the common pretrained English models.
const DefaultDimension = 300

var (
	// ErrDimensionMismatch is returned when a vectors file row has the wrong width.
	ErrDimensionMismatch = errors.New("word vector dimension mismatch")
	// ErrEmptyVocabulary is returned when a vectors file contains no usable rows.
	ErrEmptyVocabulary = errors.New("no word vectors loaded")
)

// Embedder averages pretrained per-token vectors into a single text vector.
// The table is never written after construction.
type Embedder struct {
	name         string
	dimension    int
	vectors      map[string][]float64
	tokenPattern *regexp.Regexp
}

// New builds an embedder over an in-memory vector table.
func New(name string, dimension int, vectors map[string][]float64) (*Embedder, error) {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	for word, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: %q has %d values, want %d", ErrDimensionMismatch, word, len(v), dimension)
		}
	}
	return &Embedder{
		name:         name,
		dimension:    dimension,
		vectors:      vectors,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+(?:[.,]\p{N}+)*|[^\s\p{L}\p{N}]`),
	}, nil
}

// LoadFile reads a GloVe-style text file (one "word v1 ... vN" row per line).
func LoadFile(path string, dimension int) (*Embedder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word vectors: %w", err)
	}
	defer f.Close()
	return Load(path, f, dimension)
}

// Load parses word vectors from r. A leading "count dim" header line, as written by
// word2vec tools, is skipped.
func Load(name string, r io.Reader, dimension int) (*Embedder, error) {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	vectors := make(map[string][]float64)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[1]); err == nil {
				continue
			}
		}
		if len(fields) != dimension+1 {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrDimensionMismatch, line, len(fields)-1, dimension)
		}
		vec := make([]float64, dimension)
		for i, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse word vectors line %d: %w", line, err)
			}
			vec[i] = v
		}
		vectors[fields[0]] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word vectors: %w", err)
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return New(name, dimension, vectors)
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string {
	if e.name == "" {
		return "wordvec"
	}
	return e.name
}

// Dimension returns the dimensionality of the produced vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Vocabulary returns the number of known words.
func (e *Embedder) Vocabulary() int { return len(e.vectors) }

// Embed returns the element-wise mean of the token vectors of text.
// Unknown tokens count as zero vectors. It never fails.
func (e *Embedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}
	for _, tok := range tokens {
		tv, ok := e.lookup(tok)
		if !ok {
			continue
		}
		for i := range vec {
			vec[i] += tv[i]
		}
	}
	n := float64(len(tokens))
	for i := range vec {
		vec[i] /= n
	}
	return vec, nil
}

func (e *Embedder) lookup(token string) ([]float64, bool) {
	if v, ok := e.vectors[token]; ok {
		return v, true
	}
	v, ok := e.vectors[strings.ToLower(token)]
	return v, ok
}

func (e *Embedder) tokenize(text string) []string {
	return e.tokenPattern.FindAllString(text, -1)
}
