// Package aligner maps extracted skill phrases onto taxonomy entries.
//
// Alignment is greedy and single-pass: skills are visited in input order and
// each takes its best unclaimed entry at or above the threshold. Nothing is
// reconsidered, so an entry claimed early can starve a later, better-fitting
// skill.
package aligner

import (
	"fmt"
	"strings"

	"skillalign/internal/domain"
	"skillalign/internal/embedding"
	"skillalign/internal/vectorstore"
	"skillalign/internal/vectorstore/memory"
)

// DefaultThreshold is the minimum cosine similarity for a match.
const DefaultThreshold = 0.85

// ClaimPolicy decides when a taxonomy entry leaves the pool for the rest of a pass.
type ClaimPolicy string

const (
	// ClaimOnThreshold removes an entry as soon as it clears the threshold for
	// any skill, even when another entry ends up as that skill's best match.
	ClaimOnThreshold ClaimPolicy = "threshold"
	// ClaimOnAssignment removes only the entry a skill was actually aligned to.
	ClaimOnAssignment ClaimPolicy = "assignment"
)

// ParseClaimPolicy maps a config string onto a ClaimPolicy. Empty means ClaimOnThreshold.
func ParseClaimPolicy(s string) (ClaimPolicy, error) {
	switch ClaimPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ClaimOnThreshold:
		return ClaimOnThreshold, nil
	case ClaimOnAssignment:
		return ClaimOnAssignment, nil
	default:
		return "", fmt.Errorf("unknown claim policy %q", s)
	}
}

// Config tunes an Aligner. Threshold is used as given, 0 included; start from
// DefaultConfig to get the usual settings.
type Config struct {
	Threshold   float64
	ClaimPolicy ClaimPolicy
}

// DefaultConfig returns a threshold of DefaultThreshold and ClaimOnThreshold.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, ClaimPolicy: ClaimOnThreshold}
}

// Aligner performs greedy taxonomy alignment. It holds no per-call state and may
// be reused for sequential calls; concurrent calls are safe only if the
// embedder is.
type Aligner struct {
	embedder  embedding.Embedder
	threshold float64
	policy    ClaimPolicy
}

// New creates an Aligner. An empty claim policy means ClaimOnThreshold.
func New(embedder embedding.Embedder, cfg Config) *Aligner {
	policy := cfg.ClaimPolicy
	if policy == "" {
		policy = ClaimOnThreshold
	}
	return &Aligner{embedder: embedder, threshold: cfg.Threshold, policy: policy}
}

// Threshold returns the effective similarity threshold.
func (a *Aligner) Threshold() float64 { return a.threshold }

// Policy returns the effective claim policy.
func (a *Aligner) Policy() ClaimPolicy { return a.policy }

// Align returns one MatchResult per skill that found a qualifying, unclaimed
// entry, in skill order. Blank skills are skipped without claiming anything. A
// taxonomy name appears in at most one result. The result is never nil.
func (a *Aligner) Align(skills []string, table []domain.TaxonomyEntry) ([]domain.MatchResult, error) {
	matches := make([]domain.MatchResult, 0)
	matched := make(map[string]struct{})
	var index vectorstore.Storage
	for _, skill := range skills {
		if strings.TrimSpace(skill) == "" {
			continue
		}
		if index == nil {
			var err error
			if index, err = a.index(table); err != nil {
				return nil, err
			}
		}
		vec, err := a.embedder.Embed(skill)
		if err != nil {
			return nil, fmt.Errorf("embed skill %q: %w", skill, err)
		}
		scores, err := index.Scan(vec)
		if err != nil {
			return nil, fmt.Errorf("scan taxonomy: %w", err)
		}

		best := -1
		bestSimilarity := 0.0
		for i, sim := range scores {
			name := table[i].Name
			if sim < a.threshold {
				continue
			}
			if _, claimed := matched[name]; claimed {
				continue
			}
			if sim > bestSimilarity {
				best = i
				bestSimilarity = sim
			}
			if a.policy == ClaimOnThreshold {
				matched[name] = struct{}{}
			}
		}
		if best < 0 {
			continue
		}
		if a.policy == ClaimOnAssignment {
			matched[table[best].Name] = struct{}{}
		}
		matches = append(matches, domain.MatchResult{
			SkillName:  table[best].Name,
			SkillID:    table[best].ID,
			Similarity: bestSimilarity,
		})
	}
	return matches, nil
}

// Suggest returns the k entries most similar to skill, best first, ignoring the
// threshold and claims. A blank or unvectorizable skill has no neighbours.
func (a *Aligner) Suggest(skill string, table []domain.TaxonomyEntry, k int) ([]domain.ScoredEntry, error) {
	if strings.TrimSpace(skill) == "" {
		return []domain.ScoredEntry{}, nil
	}
	index, err := a.index(table)
	if err != nil {
		return nil, err
	}
	vec, err := a.embedder.Embed(skill)
	if err != nil {
		return nil, fmt.Errorf("embed skill %q: %w", skill, err)
	}
	// a vector with no known tokens is equally far from everything
	if index.Len() == 0 || embedding.IsZero(vec) {
		return []domain.ScoredEntry{}, nil
	}
	return index.Search(vec, k)
}

// index embeds every entry once for the duration of a single Align call.
func (a *Aligner) index(table []domain.TaxonomyEntry) (vectorstore.Storage, error) {
	store := memory.NewStorage()
	vectors := make([][]float64, len(table))
	dimension := 0
	for i, entry := range table {
		vec, err := a.embedder.Embed(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("embed taxonomy entry %q: %w", entry.Name, err)
		}
		vectors[i] = vec
		if dimension == 0 {
			dimension = len(vec)
		}
	}
	if dimension == 0 {
		// nothing vectorizable, every similarity is 0
		return store, nil
	}
	for i, vec := range vectors {
		// remote embedders may learn their width after a blank entry was embedded
		if len(vec) == 0 {
			vectors[i] = make([]float64, dimension)
		}
	}
	if err := store.Init(dimension); err != nil {
		return nil, fmt.Errorf("init taxonomy index: %w", err)
	}
	if err := store.Upsert(table, vectors); err != nil {
		return nil, fmt.Errorf("index taxonomy: %w", err)
	}
	return store, nil
}
