package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillalign/internal/aligner"
	"skillalign/internal/chunker"
	"skillalign/internal/embedding"
	"skillalign/internal/embedding/tfidf"
	"skillalign/internal/embedding/wordvec"
	"skillalign/internal/taxonomy"
)

// wordExtractor reports every known skill word in text, in order of appearance.
type wordExtractor struct {
	known map[string]bool
	calls []string
}

func (e *wordExtractor) Extract(text string) []string {
	e.calls = append(e.calls, text)
	out := []string{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;!?")
		if e.known[w] {
			out = append(out, w)
		}
	}
	return out
}

func newExtractor(words ...string) *wordExtractor {
	known := make(map[string]bool, len(words))
	for _, w := range words {
		known[w] = true
	}
	return &wordExtractor{known: known}
}

func testEmbedder(t *testing.T) embedding.Embedder {
	t.Helper()
	e, err := wordvec.New("test", 4, map[string][]float64{
		"python":      {1, 0, 0, 0},
		"programming": {0.3, 0, 0, 0.2},
		"excel":       {0, 1, 0, 0},
		"microsoft":   {0, 0.8, 0, 0.3},
		"java":        {0, 0, 1, 0},
	})
	require.NoError(t, err)
	return e
}

func testLoader(t *testing.T) *taxonomy.Loader {
	t.Helper()
	dir := t.TempDir()
	csv := "RSD Name,ID\nPython,P1\nMicrosoft Excel,E1\nJava,J1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skills.csv"), []byte(csv), 0o644))
	return taxonomy.NewLoader(dir, map[string]taxonomy.Source{
		"TEST": {Format: "csv", Files: []string{"skills.csv"}, NameColumn: "RSD Name", IDColumn: "ID"},
	})
}

func newService(t *testing.T, ex *wordExtractor, emb embedding.Embedder, log logrus.FieldLogger) *SkillService {
	t.Helper()
	al := aligner.New(emb, aligner.Config{Threshold: 0.85})
	return NewSkillService(ex, emb, al, testLoader(t), nil, log)
}

func TestAnalyze(t *testing.T) {
	svc := newService(t, newExtractor("python", "excel"), testEmbedder(t), nil)

	res, err := svc.Analyze("Python and Excel, daily.", "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "excel"}, res.Skills)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "Python", res.Matches[0].SkillName)
	assert.Equal(t, "P1", res.Matches[0].SkillID)
	assert.InDelta(t, 1.0, res.Matches[0].Similarity, 1e-9)
	assert.Equal(t, "E1", res.Matches[1].SkillID)
}

func TestAnalyzeNoSkills(t *testing.T) {
	svc := newService(t, newExtractor("python"), testEmbedder(t), nil)

	res, err := svc.Analyze("nothing relevant here", "TEST")
	require.NoError(t, err)
	assert.Empty(t, res.Skills)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)
}

func TestAlignUnknownTaxonomy(t *testing.T) {
	svc := newService(t, newExtractor(), testEmbedder(t), nil)

	_, err := svc.Align([]string{"python"}, "ESCO")
	assert.ErrorIs(t, err, taxonomy.ErrUnknownTaxonomy)
}

func TestAlignPreparesTFIDF(t *testing.T) {
	svc := newService(t, newExtractor(), tfidf.NewEmbedder(), nil)

	got, err := svc.Align([]string{"python", "java"}, "TEST")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P1", got[0].SkillID)
	assert.Equal(t, "J1", got[1].SkillID)
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Java developer"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("Python"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("no skills"), 0o644))
	svc := newService(t, newExtractor("java", "python"), testEmbedder(t), nil)

	results, err := svc.ProcessFiles([]string{filepath.Join(dir, "*")}, "TEST")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(dir, "a.txt"), results[0].Path)
	assert.Equal(t, []string{"java"}, results[0].Skills)
	require.Len(t, results[0].Matches, 1)
	assert.Equal(t, "J1", results[0].Matches[0].SkillID)

	assert.Equal(t, filepath.Join(dir, "c.txt"), results[1].Path)
	assert.Empty(t, results[1].Skills)
	assert.Empty(t, results[1].Matches)
}

func TestProcessFilesClaimsResetPerDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("python"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("python"), 0o644))
	svc := newService(t, newExtractor("python"), testEmbedder(t), nil)

	results, err := svc.ProcessFiles([]string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, "TEST")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results[0].Matches, 1)
	assert.Len(t, results[1].Matches, 1)
}

func TestProcessFilesNoDocuments(t *testing.T) {
	svc := newService(t, newExtractor(), testEmbedder(t), nil)

	_, err := svc.ProcessFiles([]string{filepath.Join(t.TempDir(), "*.txt")}, "TEST")
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestReadDocumentsSkipsUnmatchedPatterns(t *testing.T) {
	dir := t.TempDir()
	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("python"), 0o644))

	docs, err := ReadDocuments([]string{filepath.Join(empty, "*.txt"), filepath.Join(empty, "doc[0-9].txt"), filepath.Join(dir, "a.txt")})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), docs[0].Path)
}

func TestReadDocumentsMissingPlainPath(t *testing.T) {
	_, err := ReadDocuments([]string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDocuments)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractChunksAndDedups(t *testing.T) {
	ex := newExtractor("python", "java")
	emb := testEmbedder(t)
	svc := NewSkillService(ex, emb, aligner.New(emb, aligner.DefaultConfig()), testLoader(t), chunker.NewSentenceChunker(1, 0), nil)

	got := svc.Extract("Python is great. Java and python.")
	assert.Equal(t, []string{"python", "java"}, got)
	assert.Len(t, ex.calls, 2)
}

func TestSuggest(t *testing.T) {
	svc := newService(t, newExtractor(), testEmbedder(t), nil)

	got, err := svc.Suggest("microsoft excel", "TEST", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "E1", got[0].Entry.ID)
}

func TestOperationsLogPerformance(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	svc := newService(t, newExtractor("python"), testEmbedder(t), logger)

	_, err := svc.Align([]string{"python"}, "TEST")
	require.NoError(t, err)

	var ops []string
	for _, e := range hook.AllEntries() {
		if op, ok := e.Data["op"].(string); ok {
			ops = append(ops, op)
			assert.Contains(t, e.Data, "duration_ms")
			assert.Contains(t, e.Data, "heap_mb")
			assert.NotEmpty(t, e.Data["run_id"])
		}
	}
	assert.Equal(t, []string{"align"}, ops)
}

func TestTaxonomies(t *testing.T) {
	svc := newService(t, newExtractor(), testEmbedder(t), nil)
	assert.Equal(t, []string{"TEST"}, svc.Taxonomies())
}
