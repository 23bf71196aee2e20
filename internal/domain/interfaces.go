package domain

// TaxonomyEntry is a single named, identified concept of a reference skill taxonomy.
// Names are not guaranteed to be unique within a table.
type TaxonomyEntry struct {
	Name string
	ID   string
}

// MatchResult is the taxonomy entry an extracted skill was aligned to.
type MatchResult struct {
	SkillName  string  `json:"SkillName" yaml:"SkillName"`
	SkillID    string  `json:"SkillID" yaml:"SkillID"`
	Similarity float64 `json:"corr_coeff" yaml:"corr_coeff"`
}

// ScoredEntry pairs a taxonomy entry with its similarity to a query.
type ScoredEntry struct {
	Entry TaxonomyEntry `json:"entry" yaml:"entry"`
	Score float64       `json:"score" yaml:"score"`
}

// Annotation is a single phrase hit reported by an extraction engine.
type Annotation struct {
	SkillID      string  `json:"skill_id"`
	DocNodeValue string  `json:"doc_node_value"`
	Score        float64 `json:"score"`
	DocNodeID    []int   `json:"doc_node_id"`
	Type         string  `json:"type,omitempty"`
}

// Annotations groups the hits of one annotate call by match kind.
type Annotations struct {
	FullMatches []Annotation `json:"full_matches"`
	NgramScored []Annotation `json:"ngram_scored"`
}

// Document is a single text loaded for extraction.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous run of sentences of a document.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// DocumentResult holds what the pipeline found in one document.
type DocumentResult struct {
	Path    string        `json:"path,omitempty" yaml:"path,omitempty"`
	Skills  []string      `json:"skills" yaml:"skills"`
	Matches []MatchResult `json:"matches" yaml:"matches"`
}

// Chunker splits documents into sentence chunks.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// TaxonomyLoader resolves a named taxonomy into its (name, id) table.
type TaxonomyLoader interface {
	Names() []string
	Load(name string) ([]TaxonomyEntry, error)
}

// SkillExtractor pulls candidate skill phrases out of free text.
type SkillExtractor interface {
	Extract(text string) []string
}
