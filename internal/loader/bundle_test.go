package loader

import (
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/andybalholm/brotli"
)

func compressFixture(t *testing.T, name string, wrap func(io.Writer) io.WriteCloser) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "bundle.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	w := wrap(f)
	if _, err := w.Write(raw); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadBundleCompressed(t *testing.T) {
	plain, err := LoadBundle(filepath.Join("testdata", "bundle.json"))
	if err != nil {
		t.Fatalf("LoadBundle failed: %v", err)
	}

	tests := []struct {
		name string
		wrap func(io.Writer) io.WriteCloser
	}{
		{"bundle.json.br", func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) }},
		{"bundle.json.gz", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := compressFixture(t, tt.name, tt.wrap)
			got, err := LoadBundle(path)
			if err != nil {
				t.Fatalf("LoadBundle(%s) failed: %v", tt.name, err)
			}
			if !reflect.DeepEqual(got, plain) {
				t.Error("compressed bundle decoded differently from the plain one")
			}
		})
	}
}

func TestLoadBundleErrors(t *testing.T) {
	_, err := LoadBundle(filepath.Join("testdata", "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBundle(bad); err == nil {
		t.Error("expected a parse error")
	}

	empty := filepath.Join(t.TempDir(), "null.json")
	if err := os.WriteFile(empty, []byte("null"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBundle(empty); err == nil {
		t.Error("expected an error for a null bundle")
	}
}
