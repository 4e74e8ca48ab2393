package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func zipWrap(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func TestParse_ZipWrapped(t *testing.T) {
	data := buildFontData("")
	wrapped := zipWrap(t, "font.flf", []byte(data))

	plain := parseTestFont(t, data)
	zipped, err := Parse(bytes.NewReader(wrapped))
	if err != nil {
		t.Fatalf("Parse(zip) error = %v", err)
	}

	if diff := cmp.Diff(plain.Characters, zipped.Characters); diff != "" {
		t.Errorf("zip-wrapped font differs from plain (-plain +zipped):\n%s", diff)
	}
	if zipped.Hardblank != plain.Hardblank || zipped.Height != plain.Height {
		t.Errorf("zip-wrapped header disagrees: hardblank %q/%q, height %d/%d",
			zipped.Hardblank, plain.Hardblank, zipped.Height, plain.Height)
	}
}

func TestParse_ZipEntryNotAFont(t *testing.T) {
	wrapped := zipWrap(t, "readme.txt", []byte("not a font at all"))

	_, err := Parse(bytes.NewReader(wrapped))
	if !errors.Is(err, ErrFormat) {
		t.Errorf("Parse(zip with non-font entry) error = %v, want ErrFormat", err)
	}
}

func TestNewSource_Magic(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"font magic", "flf2a$ 1 1 8 -1 0\n", false},
		{"unknown magic", "GIF89a...", true},
		{"short stream", "fl", true},
		{"empty stream", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(strings.NewReader(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrFormat) {
					t.Errorf("NewSource() error = %v, want ErrFormat", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewSource() unexpected error = %v", err)
			}
		})
	}
}
