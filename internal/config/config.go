package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// WordVecConfig points at a pretrained word vectors file.
type WordVecConfig struct {
	Path      string `yaml:"path"`
	Dimension int    `yaml:"dimension"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                `yaml:"type"`
	WordVec *WordVecConfig        `yaml:"wordvec,omitempty"`
	OpenAI  *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// AlignerConfig tunes greedy alignment. Threshold defaults to 0.85 only when
// absent from the file; an explicit 0 is kept.
type AlignerConfig struct {
	Threshold   float64 `yaml:"threshold"`
	ClaimPolicy string  `yaml:"claim_policy"`
}

// TaxonomySourceConfig describes the files behind one named taxonomy.
type TaxonomySourceConfig struct {
	Format     string   `yaml:"format"`
	Files      []string `yaml:"files"`
	NameColumn string   `yaml:"name_column"`
	IDColumn   string   `yaml:"id_column"`
	Delimiter  string   `yaml:"delimiter,omitempty"`
}

// TaxonomyConfig lists the available taxonomies and the default alignment target.
type TaxonomyConfig struct {
	DataPath string                          `yaml:"data_path"`
	Default  string                          `yaml:"default"`
	Sources  map[string]TaxonomySourceConfig `yaml:"sources"`
}

// RemoteExtractorConfig contains connection details for a remote annotation service.
type RemoteExtractorConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	RetryCount    int    `yaml:"retry_count"`
	RetryWaitSecs int    `yaml:"retry_wait_secs"`
}

// ExtractorConfig selects and configures the phrase annotator. A positive
// SentencesPerChunk splits documents before extraction; 0 extracts each document whole.
type ExtractorConfig struct {
	Type               string  `yaml:"type"`
	Taxonomy           string  `yaml:"taxonomy"`
	IncludeFullMatches bool    `yaml:"include_full_matches"`
	MinNgramScore      float64 `yaml:"min_ngram_score"`
	MaxNgramTokens     int     `yaml:"max_ngram_tokens"`
	SentencesPerChunk  int     `yaml:"sentences_per_chunk"`

	Remote *RemoteExtractorConfig `yaml:"remote,omitempty"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Aligner   AlignerConfig   `yaml:"aligner"`
	Taxonomy  TaxonomyConfig  `yaml:"taxonomy"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Log       LogConfig       `yaml:"log"`
}

// Environment variables that override file settings.
const (
	EnvThreshold   = "SKILLALIGN_THRESHOLD"
	EnvDataPath    = "SKILLALIGN_DATA_PATH"
	EnvVectorsPath = "SKILLALIGN_VECTORS_PATH"
	EnvTaxonomy    = "SKILLALIGN_TAXONOMY"
	EnvLogLevel    = "SKILLALIGN_LOG_LEVEL"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		// a file that lists sources replaces the built-in ones instead of merging
		cfg.Taxonomy.Sources = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.Taxonomy.Sources == nil {
			cfg.Taxonomy.Sources = defaultSources()
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, cfg.Validate()
}

// LoadDefault tries ./config.yaml first, then ~/.config/skillalign/config.yaml.
// If neither exists, it writes defaults to ~/.config/skillalign/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no component can work with.
func (c *AppConfig) Validate() error {
	if c.Aligner.Threshold < -1 || c.Aligner.Threshold > 1 {
		return fmt.Errorf("aligner.threshold %v outside [-1, 1]", c.Aligner.Threshold)
	}
	if len(c.Taxonomy.Sources) == 0 {
		return errors.New("taxonomy.sources is empty")
	}
	for name, src := range c.Taxonomy.Sources {
		if len(src.Files) == 0 {
			return fmt.Errorf("taxonomy %s: no files", name)
		}
		if src.NameColumn == "" || src.IDColumn == "" {
			return fmt.Errorf("taxonomy %s: name_column and id_column are required", name)
		}
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "skillalign", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "skillalign", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{
			Type:    "wordvec",
			WordVec: &WordVecConfig{Path: "data/glove.6B.300d.txt", Dimension: 300},
		},
		Aligner: AlignerConfig{Threshold: 0.85, ClaimPolicy: "threshold"},
		Taxonomy: TaxonomyConfig{
			DataPath: "data",
			Default:  "OSN",
			Sources:  defaultSources(),
		},
		Extractor: ExtractorConfig{
			Type:           "phrase",
			Taxonomy:       "LIGHTCAST",
			MinNgramScore:  0.5,
			MaxNgramTokens: 4,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func defaultSources() map[string]TaxonomySourceConfig {
	return map[string]TaxonomySourceConfig{
		"OSN": {
			Format:     "csv",
			Files:      []string{"osn_comp_prepped.csv", "osn_pr_prepped.csv", "osn_ind_prepped.csv"},
			NameColumn: "RSD Name",
			IDColumn:   "ID",
		},
		"LIGHTCAST": {
			Format:     "json",
			Files:      []string{"skill_db_relax_20.json"},
			NameColumn: "skill_name",
			IDColumn:   "id",
		},
	}
}

func applyEnv(cfg *AppConfig) error {
	if v := strings.TrimSpace(os.Getenv(EnvThreshold)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThreshold, err)
		}
		cfg.Aligner.Threshold = f
	}
	if v := os.Getenv(EnvDataPath); v != "" {
		cfg.Taxonomy.DataPath = v
	}
	if v := os.Getenv(EnvVectorsPath); v != "" {
		if cfg.Embedder.WordVec == nil {
			cfg.Embedder.WordVec = &WordVecConfig{}
		}
		cfg.Embedder.WordVec.Path = v
	}
	if v := os.Getenv(EnvTaxonomy); v != "" {
		cfg.Taxonomy.Default = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "wordvec"
	}
	if cfg.Embedder.Type == "wordvec" {
		if cfg.Embedder.WordVec == nil {
			cfg.Embedder.WordVec = &WordVecConfig{}
		}
		if cfg.Embedder.WordVec.Dimension == 0 {
			cfg.Embedder.WordVec.Dimension = 300
		}
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Aligner.ClaimPolicy == "" {
		cfg.Aligner.ClaimPolicy = "threshold"
	}
	if cfg.Taxonomy.Default == "" {
		cfg.Taxonomy.Default = "OSN"
	}
	if cfg.Extractor.Type == "" {
		cfg.Extractor.Type = "phrase"
	}
	if cfg.Extractor.Taxonomy == "" {
		cfg.Extractor.Taxonomy = "LIGHTCAST"
	}
	if cfg.Extractor.Type == "remote" && cfg.Extractor.Remote != nil {
		if cfg.Extractor.Remote.TimeoutSecs == 0 {
			cfg.Extractor.Remote.TimeoutSecs = 30
		}
		if cfg.Extractor.Remote.RetryWaitSecs == 0 {
			cfg.Extractor.Remote.RetryWaitSecs = 1
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
