package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "wordvec", cfg.Embedder.Type)
	assert.Equal(t, 300, cfg.Embedder.WordVec.Dimension)
	assert.Equal(t, 0.85, cfg.Aligner.Threshold)
	assert.Equal(t, "threshold", cfg.Aligner.ClaimPolicy)
	assert.Equal(t, "OSN", cfg.Taxonomy.Default)
	assert.Equal(t, "LIGHTCAST", cfg.Extractor.Taxonomy)
	assert.False(t, cfg.Extractor.IncludeFullMatches)

	osn := cfg.Taxonomy.Sources["OSN"]
	assert.Equal(t, []string{"osn_comp_prepped.csv", "osn_pr_prepped.csv", "osn_ind_prepped.csv"}, osn.Files)
	assert.Equal(t, "RSD Name", osn.NameColumn)
	assert.Equal(t, "skill_name", cfg.Taxonomy.Sources["LIGHTCAST"].NameColumn)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
aligner:
  threshold: 0.9
  claim_policy: assignment
taxonomy:
  sources:
    ESCO:
      format: csv
      files: [esco.csv]
      name_column: preferredLabel
      id_column: conceptUri
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 0.9, cfg.Aligner.Threshold)
	assert.Equal(t, "assignment", cfg.Aligner.ClaimPolicy)
	assert.Contains(t, cfg.Taxonomy.Sources, "ESCO")
	assert.NotContains(t, cfg.Taxonomy.Sources, "OSN")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aligner: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aligner:\n  threshold: 1.5\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "threshold")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvThreshold, "0.7")
	t.Setenv(EnvDataPath, "/srv/taxonomies")
	t.Setenv(EnvVectorsPath, "/srv/glove.txt")
	t.Setenv(EnvTaxonomy, "LIGHTCAST")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Aligner.Threshold)
	assert.Equal(t, "/srv/taxonomies", cfg.Taxonomy.DataPath)
	assert.Equal(t, "/srv/glove.txt", cfg.Embedder.WordVec.Path)
	assert.Equal(t, "LIGHTCAST", cfg.Taxonomy.Default)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvThresholdMustParse(t *testing.T) {
	t.Setenv(EnvThreshold, "high")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, EnvThreshold)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Aligner.Threshold = 0.8
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, loaded.Aligner.Threshold)
	assert.Equal(t, cfg.Taxonomy.Sources, loaded.Taxonomy.Sources)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "skillalign", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, "OSN", cfg.Taxonomy.Default)
}

func TestZeroThresholdIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aligner:\n  threshold: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Aligner.Threshold)

	t.Setenv(EnvThreshold, "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Aligner.Threshold)
}
