package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"skillalign/internal/aligner"
	"skillalign/internal/chunker"
	"skillalign/internal/config"
	"skillalign/internal/domain"
	"skillalign/internal/embedding"
	"skillalign/internal/embedding/openai"
	"skillalign/internal/embedding/tfidf"
	"skillalign/internal/embedding/wordvec"
	"skillalign/internal/extractor"
	"skillalign/internal/service"
	"skillalign/internal/taxonomy"
)

func newLoader(cfg *config.AppConfig) *taxonomy.Loader {
	sources := make(map[string]taxonomy.Source, len(cfg.Taxonomy.Sources))
	for name, src := range cfg.Taxonomy.Sources {
		sources[name] = taxonomy.Source{
			Format:     src.Format,
			Files:      src.Files,
			NameColumn: src.NameColumn,
			IDColumn:   src.IDColumn,
			Delimiter:  src.Delimiter,
		}
	}
	return taxonomy.NewLoader(cfg.Taxonomy.DataPath, sources)
}

func newEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "wordvec", "":
		if cfg.Embedder.WordVec == nil || cfg.Embedder.WordVec.Path == "" {
			return nil, fmt.Errorf("wordvec embedder needs embedder.wordvec.path")
		}
		globalLogger.WithField("path", cfg.Embedder.WordVec.Path).Info("loading word vectors")
		emb, err := wordvec.LoadFile(cfg.Embedder.WordVec.Path, cfg.Embedder.WordVec.Dimension)
		if err != nil {
			return nil, fmt.Errorf("load word vectors: %w", err)
		}
		globalLogger.WithField("vocabulary", emb.Vocabulary()).Debug("word vectors loaded")
		return emb, nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			Dimension:  cfg.Embedder.OpenAI.Dimension,
			MaxRetries: cfg.Embedder.OpenAI.MaxRetries,
		})
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newExtractor(cfg *config.AppConfig, loader domain.TaxonomyLoader) (*extractor.SkillExtractor, error) {
	var ann extractor.Annotator
	switch cfg.Extractor.Type {
	case "phrase", "":
		db, err := loader.Load(cfg.Extractor.Taxonomy)
		if err != nil {
			return nil, fmt.Errorf("load extraction phrases: %w", err)
		}
		phrases := extractor.NewPhraseAnnotator(db, extractor.PhraseConfig{
			MinNgramScore:  cfg.Extractor.MinNgramScore,
			MaxNgramTokens: cfg.Extractor.MaxNgramTokens,
		}, chunker.NewSentenceChunker(1, 0))
		globalLogger.WithFields(logrus.Fields{
			"taxonomy": cfg.Extractor.Taxonomy,
			"phrases":  phrases.Size(),
		}).Debug("phrase annotator ready")
		ann = phrases
	case "remote":
		if cfg.Extractor.Remote == nil {
			return nil, fmt.Errorf("remote extractor config missing")
		}
		rc := cfg.Extractor.Remote
		key := ""
		if rc.APIKeyEnv != "" {
			key = os.Getenv(rc.APIKeyEnv)
		}
		ann = extractor.NewRemoteAnnotator(extractor.RemoteConfig{
			BaseURL:       rc.BaseURL,
			APIKey:        key,
			Timeout:       time.Duration(rc.TimeoutSecs) * time.Second,
			RetryCount:    rc.RetryCount,
			RetryWaitTime: time.Duration(rc.RetryWaitSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown extractor: %s", cfg.Extractor.Type)
	}
	return extractor.NewSkillExtractor(ann, globalLogger, extractor.WithFullMatches(cfg.Extractor.IncludeFullMatches)), nil
}

func newAligner(cfg *config.AppConfig, emb embedding.Embedder) (*aligner.Aligner, error) {
	policy, err := aligner.ParseClaimPolicy(cfg.Aligner.ClaimPolicy)
	if err != nil {
		return nil, err
	}
	return aligner.New(emb, aligner.Config{Threshold: cfg.Aligner.Threshold, ClaimPolicy: policy}), nil
}

// serviceParts selects what a command needs so that, e.g., align never builds
// the extractor.
type serviceParts struct {
	extractor bool
	embedder  bool
}

func buildService(cfg *config.AppConfig, parts serviceParts) (*service.SkillService, error) {
	loader := newLoader(cfg)

	var ex domain.SkillExtractor
	if parts.extractor {
		e, err := newExtractor(cfg, loader)
		if err != nil {
			return nil, err
		}
		ex = e
	}

	var (
		emb embedding.Embedder
		al  *aligner.Aligner
	)
	if parts.embedder {
		var err error
		if emb, err = newEmbedder(cfg); err != nil {
			return nil, err
		}
		if al, err = newAligner(cfg, emb); err != nil {
			return nil, err
		}
	}

	var ch domain.Chunker
	if cfg.Extractor.SentencesPerChunk > 0 {
		ch = chunker.NewSentenceChunker(cfg.Extractor.SentencesPerChunk, 0)
	}
	return service.NewSkillService(ex, emb, al, loader, ch, globalLogger), nil
}
