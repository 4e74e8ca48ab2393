package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "standard.flf"))
	writeFile(t, filepath.Join(dir, "upper.flc"))

	elsewhere := t.TempDir()
	direct := filepath.Join(elsewhere, "custom.flf")
	writeFile(t, direct)

	tests := []struct {
		name string
		ref  string
		dir  string
		ext  string
		want string
	}{
		{
			name: "existing path with extension used as is",
			ref:  direct,
			dir:  dir,
			ext:  ".flf",
			want: direct,
		},
		{
			name: "bare name found in font directory",
			ref:  "standard",
			dir:  dir,
			ext:  ".flf",
			want: filepath.Join(dir, "standard.flf"),
		},
		{
			name: "name with extension found in font directory",
			ref:  "upper.flc",
			dir:  dir,
			ext:  ".flc",
			want: filepath.Join(dir, "upper.flc"),
		},
		{
			name: "control name found in font directory",
			ref:  "upper",
			dir:  dir,
			ext:  ".flc",
			want: filepath.Join(dir, "upper.flc"),
		},
		{
			name: "unresolvable reference passed through",
			ref:  "no-such-font",
			dir:  dir,
			ext:  ".flf",
			want: "no-such-font",
		},
		{
			name: "no directory configured",
			ref:  "no-such-font",
			dir:  "",
			ext:  ".flf",
			want: "no-such-font",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePath(tt.ref, tt.dir, tt.ext); got != tt.want {
				t.Errorf("resolvePath(%q, %q, %q) = %q, want %q",
					tt.ref, tt.dir, tt.ext, got, tt.want)
			}
		})
	}
}
