// Package taxonomy reads reference skill taxonomies from flat tabular files.
package taxonomy

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"skillalign/internal/domain"
)

var (
	ErrUnknownTaxonomy = errors.New("unknown taxonomy")
	ErrMissingColumn   = errors.New("missing column")
	ErrMalformed       = errors.New("malformed taxonomy file")
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Source describes where one named taxonomy lives. Files are concatenated in order.
type Source struct {
	Format     string
	Files      []string
	NameColumn string
	IDColumn   string
	Delimiter  string
}

// Loader resolves named taxonomies into (name, id) tables. Every Load call reads
// the files again; nothing is cached.
type Loader struct {
	dataPath string
	sources  map[string]Source
}

// NewLoader creates a loader. Relative file names resolve against dataPath.
func NewLoader(dataPath string, sources map[string]Source) *Loader {
	normalized := make(map[string]Source, len(sources))
	for name, src := range sources {
		normalized[strings.ToUpper(name)] = src
	}
	return &Loader{dataPath: dataPath, sources: normalized}
}

// Names lists the configured taxonomy names, sorted.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads the named taxonomy. Names are matched case-insensitively.
func (l *Loader) Load(name string) ([]domain.TaxonomyEntry, error) {
	src, ok := l.sources[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaxonomy, name)
	}
	if len(src.Files) == 0 {
		return nil, fmt.Errorf("taxonomy %s: no files configured", name)
	}
	var entries []domain.TaxonomyEntry
	for _, file := range src.Files {
		path := file
		if !filepath.IsAbs(path) && l.dataPath != "" {
			path = filepath.Join(l.dataPath, file)
		}
		part, err := readFile(path, src)
		if err != nil {
			return nil, fmt.Errorf("taxonomy %s: %w", name, err)
		}
		entries = append(entries, part...)
	}
	return entries, nil
}

func readFile(path string, src Source) ([]domain.TaxonomyEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format := strings.ToLower(src.Format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case FormatCSV, "tsv":
		delim := src.Delimiter
		if delim == "" && format == "tsv" {
			delim = "\t"
		}
		entries, err := ReadCSV(f, src.NameColumn, src.IDColumn, delim)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return entries, nil
	case FormatJSON:
		entries, err := ReadJSON(f, src.NameColumn, src.IDColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("%s: unsupported format %q", path, format)
	}
}

// ReadCSV reads a delimited table with a header row. delimiter defaults to ",".
func ReadCSV(r io.Reader, nameColumn, idColumn, delimiter string) ([]domain.TaxonomyEntry, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	if delimiter != "" {
		d, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) {
			return nil, fmt.Errorf("delimiter %q must be a single character", delimiter)
		}
		cr.Comma = d
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	nameIdx, idIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case nameColumn:
			nameIdx = i
		case idColumn:
			idIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, nameColumn)
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, idColumn)
	}

	var entries []domain.TaxonomyEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		entries = append(entries, domain.TaxonomyEntry{Name: rec[nameIdx], ID: rec[idIdx]})
	}
	return entries, nil
}

// ReadJSON reads either an object keyed by identifier whose values are records,
// or an array of records. Key and element order is preserved. When idColumn is
// absent from a keyed record the key itself is used.
func ReadJSON(r io.Reader, nameColumn, idColumn string) ([]domain.TaxonomyEntry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformed)
	}

	var entries []domain.TaxonomyEntry
	for dec.More() {
		key := ""
		if delim == '{' {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			key, _ = kt.(string)
		}
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: record %q: %v", ErrMalformed, key, err)
		}
		name, ok := field(rec, nameColumn)
		if !ok {
			return nil, fmt.Errorf("%w: %q in record %q", ErrMissingColumn, nameColumn, key)
		}
		id, ok := field(rec, idColumn)
		if !ok {
			if key == "" {
				return nil, fmt.Errorf("%w: %q", ErrMissingColumn, idColumn)
			}
			id = key
		}
		entries = append(entries, domain.TaxonomyEntry{Name: name, ID: id})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return entries, nil
}

func field(rec map[string]any, column string) (string, bool) {
	v, ok := rec[column]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
