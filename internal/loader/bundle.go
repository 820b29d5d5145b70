package loader

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"
)

type brotliReadCloser struct {
	br *brotli.Reader
	rc io.ReadCloser
}

func (b *brotliReadCloser) Read(p []byte) (n int, err error) {
	return b.br.Read(p)
}

func (b *brotliReadCloser) Close() error {
	return b.rc.Close()
}

func newBrotliReadCloser(r io.ReadCloser) io.ReadCloser {
	return &brotliReadCloser{
		br: brotli.NewReader(r),
		rc: r,
	}
}

type gzipReadCloser struct {
	*gzip.Reader
	rc io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	g.Reader.Close()
	return g.rc.Close()
}

// openData opens a data file, decompressing .br and .gz files on the fly
func openData(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".br":
		return newBrotliReadCloser(f), nil
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &gzipReadCloser{Reader: zr, rc: f}, nil
	}
	return f, nil
}

// readJSON decodes a possibly compressed JSON file into v
func readJSON(path string, v any) error {
	rc, err := openData(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadBundle reads the raw static data bundle
func LoadBundle(path string) (map[string]any, error) {
	var bundle map[string]any
	if err := readJSON(path, &bundle); err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, fmt.Errorf("static data bundle %s is empty", filepath.Base(path))
	}
	return bundle, nil
}

// Localisation maps localisation keys to display text
type Localisation map[string]string

// LoadLocalisation reads a localisation file and indexes every key/text pair in it
func LoadLocalisation(path string) (Localisation, error) {
	var raw any
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	return IndexLocalisation(raw), nil
}

// IndexLocalisation walks decoded localisation JSON. It understands objects pairing a
// key field with a text field, and flat maps whose keys mention "localization".
func IndexLocalisation(raw any) Localisation {
	loc := make(Localisation)
	var visit func(node any)
	visit = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			key := firstString(v, "Key", "key", "_LocalizationNameKey", "_LocalizationDescriptionKey")
			text := firstString(v, "Text", "text", "Name", "name", "Description", "description")
			if key != "" && text != "" {
				loc[key] = text
			}
			for _, k := range sortedKeys(v) {
				if s, ok := v[k].(string); ok && k != "" && strings.Contains(strings.ToLower(k), "localization") {
					loc[k] = s
				}
				visit(v[k])
			}
		case []any:
			for _, item := range v {
				visit(item)
			}
		}
	}
	visit(raw)
	return loc
}

// Name returns the display name for an identifier, trying an explicit localisation key
// first and then the conventional <id>_LocalizationNameKey entry
func (l Localisation) Name(id, key string) string {
	if key != "" {
		if s, ok := l[key]; ok {
			return s
		}
	}
	if s, ok := l[id+"_LocalizationNameKey"]; ok {
		return s
	}
	if s, ok := l[id]; ok {
		return s
	}
	return ""
}

// Description returns the localised description for an identifier, if any
func (l Localisation) Description(id, key string) string {
	if key != "" {
		if s, ok := l[key]; ok {
			return s
		}
	}
	return l[id+"_LocalizationDescriptionKey"]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
