package service

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"skillalign/internal/aligner"
	"skillalign/internal/domain"
	"skillalign/internal/embedding"
)

// ErrNoDocuments is returned by ProcessFiles when no path resolves to a .txt file.
var ErrNoDocuments = errors.New("no .txt documents found")

// Preparer is implemented by embedders that must see the taxonomy vocabulary
// before they can embed anything.
type Preparer interface {
	Prepare(corpus []string) error
}

// SkillService ties extraction and alignment together for texts and files.
type SkillService struct {
	extractor domain.SkillExtractor
	embedder  embedding.Embedder
	aligner   *aligner.Aligner
	loader    domain.TaxonomyLoader
	chunker   domain.Chunker
	log       logrus.FieldLogger
}

// NewSkillService wires a service. chunker may be nil, in which case documents
// are extracted whole.
func NewSkillService(extractor domain.SkillExtractor, embedder embedding.Embedder, al *aligner.Aligner, loader domain.TaxonomyLoader, chunker domain.Chunker, log logrus.FieldLogger) *SkillService {
	if log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		log = l
	}
	return &SkillService{extractor: extractor, embedder: embedder, aligner: al, loader: loader, chunker: chunker, log: log}
}

// Taxonomies lists the configured taxonomy names.
func (s *SkillService) Taxonomies() []string { return s.loader.Names() }

// Extract returns the distinct skill phrases found in text. It never fails.
func (s *SkillService) Extract(text string) []string {
	defer s.logPerformance("extract", time.Now(), nil)
	return s.extractDocument(domain.Document{ID: hashString(text), Content: text})
}

// Align loads taxonomy and greedily aligns skills to it.
func (s *SkillService) Align(skills []string, taxonomy string) ([]domain.MatchResult, error) {
	runID := uuid.NewString()
	defer s.logPerformance("align", time.Now(), logrus.Fields{"run_id": runID, "taxonomy": taxonomy, "skills": len(skills)})
	table, err := s.table(taxonomy)
	if err != nil {
		return nil, err
	}
	matches, err := s.aligner.Align(skills, table)
	if err != nil {
		return nil, fmt.Errorf("align to %s: %w", taxonomy, err)
	}
	s.log.WithFields(logrus.Fields{"run_id": runID, "matches": len(matches)}).Debug("alignment finished")
	return matches, nil
}

// Analyze extracts skills from text and aligns them to taxonomy.
func (s *SkillService) Analyze(text, taxonomy string) (domain.DocumentResult, error) {
	skills := s.Extract(text)
	matches, err := s.Align(skills, taxonomy)
	if err != nil {
		return domain.DocumentResult{}, err
	}
	return domain.DocumentResult{Skills: skills, Matches: matches}, nil
}

// ProcessFiles analyzes every .txt file matched by paths. Each file is handled
// independently; a file with no extractable skills yields an empty result.
func (s *SkillService) ProcessFiles(paths []string, taxonomy string) ([]domain.DocumentResult, error) {
	runID := uuid.NewString()
	defer s.logPerformance("process_files", time.Now(), logrus.Fields{"run_id": runID, "taxonomy": taxonomy})
	documents, err := ReadDocuments(paths)
	if err != nil {
		return nil, err
	}
	table, err := s.table(taxonomy)
	if err != nil {
		return nil, err
	}
	results := make([]domain.DocumentResult, 0, len(documents))
	for _, d := range documents {
		skills := s.extractDocument(d)
		matches, err := s.aligner.Align(skills, table)
		if err != nil {
			return nil, fmt.Errorf("align %s to %s: %w", d.Path, taxonomy, err)
		}
		s.log.WithFields(logrus.Fields{
			"run_id":  runID,
			"path":    d.Path,
			"skills":  len(skills),
			"matches": len(matches),
		}).Info("document processed")
		results = append(results, domain.DocumentResult{Path: d.Path, Skills: skills, Matches: matches})
	}
	return results, nil
}

// Suggest returns the k taxonomy entries nearest to skill, regardless of threshold.
func (s *SkillService) Suggest(skill, taxonomy string, k int) ([]domain.ScoredEntry, error) {
	defer s.logPerformance("suggest", time.Now(), logrus.Fields{"taxonomy": taxonomy, "k": k})
	table, err := s.table(taxonomy)
	if err != nil {
		return nil, err
	}
	res, err := s.aligner.Suggest(skill, table, k)
	if err != nil {
		return nil, fmt.Errorf("suggest from %s: %w", taxonomy, err)
	}
	return res, nil
}

func (s *SkillService) table(taxonomy string) ([]domain.TaxonomyEntry, error) {
	table, err := s.loader.Load(taxonomy)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", taxonomy, err)
	}
	if p, ok := s.embedder.(Preparer); ok && len(table) > 0 {
		names := make([]string, len(table))
		for i, e := range table {
			names[i] = e.Name
		}
		if err := p.Prepare(names); err != nil {
			return nil, fmt.Errorf("prepare %s embedder: %w", s.embedder.Name(), err)
		}
	}
	return table, nil
}

func (s *SkillService) extractDocument(d domain.Document) []string {
	if s.chunker == nil {
		return s.extractor.Extract(d.Content)
	}
	chunks, err := s.chunker.Chunk(d)
	if err != nil || len(chunks) == 0 {
		return s.extractor.Extract(d.Content)
	}
	skills := []string{}
	seen := make(map[string]struct{})
	for _, ch := range chunks {
		for _, skill := range s.extractor.Extract(ch.Text) {
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			skills = append(skills, skill)
		}
	}
	return skills
}

func (s *SkillService) logPerformance(op string, start time.Time, fields logrus.Fields) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	entry := s.log.WithFields(logrus.Fields{
		"op":          op,
		"duration_ms": time.Since(start).Milliseconds(),
		"heap_mb":     float64(mem.HeapAlloc) / (1 << 20),
	})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Debug("operation finished")
}

// ReadDocuments expands globs in paths and reads every .txt file they match.
// A pattern matching nothing is skipped; a plain path is read as given, so a
// missing file is an error.
func ReadDocuments(paths []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			// an unmatched pattern contributes nothing; only plain paths are read as given
			if strings.ContainsAny(p, "*?[") {
				continue
			}
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, err
			}
			documents = append(documents, domain.Document{ID: hashString(m), Path: m, Content: string(data)})
		}
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}
	return documents, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
