// Package figterm renders text as large multi-line glyphs assembled from
// FIGlet fonts (FLF 2.0), with optional control-file character remapping.
//
// A font file is parsed once into an immutable Font; control files parse
// into ordered transformation stages; rendering resolves each user-perceived
// character of the input through the stages, looks up its glyph, and
// composes one output line per glyph row.
package figterm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/figterm/figterm/internal/control"
	"github.com/figterm/figterm/internal/parser"
	"github.com/figterm/figterm/internal/renderer"
)

// ParseFont reads a FIGfont from the provided reader and returns a Font.
// The returned Font is immutable and safe for concurrent use across
// goroutines.
//
// The stream may be the plain font form or a zip container wrapping one;
// the leading four bytes decide which. Any other magic fails with
// ErrFontFormat.
//
// Example:
//
//	file, err := os.Open("standard.flf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	font, err := figterm.ParseFont(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
func ParseFont(r io.Reader) (*Font, error) {
	pf, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}
	return convertParserFont(pf), nil
}

// ParseFontBytes parses a FIGfont from a byte slice.
func ParseFontBytes(data []byte) (*Font, error) {
	return ParseFont(bytes.NewReader(data))
}

// LoadFont loads a FIGfont from the local filesystem. A missing file is
// reported as ErrNotFound.
func LoadFont(fontPath string) (*Font, error) {
	file, err := os.Open(fontPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fontPath)
		}
		return nil, fmt.Errorf("failed to open font file: %w", err)
	}
	defer file.Close()

	font, err := ParseFont(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", fontPath, err)
	}

	font.Name = baseName(fontPath)
	return font, nil
}

// LoadFontFS loads a FIGfont from a filesystem at the specified path.
// Path traversal (e.g., "../") is not allowed.
//
// Example with embed.FS:
//
//	//go:embed fonts/*.flf
//	var fonts embed.FS
//
//	font, err := figterm.LoadFontFS(fonts, "fonts/standard.flf")
func LoadFontFS(fsys fs.FS, fontPath string) (*Font, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}

	clean, err := cleanFSPath(fontPath)
	if err != nil {
		return nil, err
	}

	file, err := fsys.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return nil, fmt.Errorf("failed to open font file: %w", err)
	}
	defer file.Close()

	font, err := ParseFont(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", clean, err)
	}

	// Use path package for fs.FS paths (not filepath)
	font.Name = strings.TrimSuffix(path.Base(clean), path.Ext(clean))
	return font, nil
}

// ParseControl reads a control file from the provided reader and returns
// its transformation stages in file order. Unsupported legacy directives
// and unrecognized lines never fail the parse; they accumulate as
// Diagnostics on the result. Only a range-length mismatch fails, with
// ErrControlFormat.
func ParseControl(r io.Reader) (*ControlFile, error) {
	cf, err := control.Parse(r)
	if err != nil {
		return nil, err
	}
	return convertControlFile(cf), nil
}

// LoadControl loads a control file from the local filesystem. A missing
// file is reported as ErrNotFound.
func LoadControl(controlPath string) (*ControlFile, error) {
	file, err := os.Open(controlPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, controlPath)
		}
		return nil, fmt.Errorf("failed to open control file: %w", err)
	}
	defer file.Close()

	cf, err := ParseControl(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse control file %s: %w", controlPath, err)
	}

	cf.Name = baseName(controlPath)
	return cf, nil
}

// LoadControlFS loads a control file from a filesystem at the specified
// path, with the same path rules as LoadFontFS.
func LoadControlFS(fsys fs.FS, controlPath string) (*ControlFile, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}

	clean, err := cleanFSPath(controlPath)
	if err != nil {
		return nil, err
	}

	file, err := fsys.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return nil, fmt.Errorf("failed to open control file: %w", err)
	}
	defer file.Close()

	cf, err := ParseControl(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse control file %s: %w", clean, err)
	}

	cf.Name = strings.TrimSuffix(path.Base(clean), path.Ext(clean))
	return cf, nil
}

// Render converts text to banner output using the specified font and
// options, returning font.Height rows joined by newlines.
func Render(text string, f *Font, opts ...Option) (string, error) {
	var sb strings.Builder
	if err := RenderTo(&sb, text, f, opts...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTo streams the composed rows directly to the provided writer.
// This avoids materializing the whole output for very tall fonts.
func RenderTo(w io.Writer, text string, f *Font, opts ...Option) error {
	if f == nil {
		return ErrNotFound
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return renderer.RenderTo(w, text, convertToParserFont(f), &renderer.Options{
		Stages:         options.stages(),
		TrimWhitespace: options.trimWhitespace,
		Debug:          options.debug,
	})
}

// cleanFSPath validates and cleans a path for use with fs.FS.
// It ensures the path is valid according to fs.ValidPath rules and
// prevents directory traversal.
func cleanFSPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("path cannot be empty")
	}
	// fs.FS disallows leading slash and uses '/' only
	if strings.HasPrefix(p, "/") {
		return "", errors.New("absolute paths not allowed")
	}
	if strings.ContainsRune(p, '\\') {
		return "", errors.New("backslashes not allowed in fs paths")
	}
	if !fs.ValidPath(p) {
		// rejects ".", ".." segments, empty elements, etc.
		return "", fmt.Errorf("invalid fs path: %s", p)
	}
	clean := path.Clean(p) // purely slash semantics
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", errors.New("path traversal not allowed")
	}
	return clean, nil
}

// baseName strips the directory and extension from an OS path.
func baseName(p string) string {
	return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
}

// convertParserFont converts an internal parser.Font to the public Font
// type. The glyph map is shared for efficiency; neither side mutates
// glyphs after parsing.
func convertParserFont(pf *parser.Font) *Font {
	if pf == nil {
		return nil
	}
	return &Font{
		glyphs:         pf.Characters,
		Hardblank:      pf.Hardblank,
		Height:         pf.Height,
		Baseline:       pf.Baseline,
		MaxLen:         pf.MaxLength,
		OldLayout:      pf.OldLayout,
		PrintDirection: pf.PrintDirection,
		FullLayout:     pf.FullLayout,
		CodetagCount:   pf.CodetagCount,
		CommentLines:   pf.CommentLines,
	}
}

// convertToParserFont converts a public Font back to the internal form the
// renderer consumes.
func convertToParserFont(f *Font) *parser.Font {
	if f == nil {
		return nil
	}
	return &parser.Font{
		Characters:     f.glyphs,
		Hardblank:      f.Hardblank,
		Height:         f.Height,
		Baseline:       f.Baseline,
		MaxLength:      f.MaxLen,
		OldLayout:      f.OldLayout,
		PrintDirection: f.PrintDirection,
		FullLayout:     f.FullLayout,
		CodetagCount:   f.CodetagCount,
		CommentLines:   f.CommentLines,
	}
}

// convertControlFile converts an internal control.ControlFile to the
// public wrapper.
func convertControlFile(cf *control.ControlFile) *ControlFile {
	if cf == nil {
		return nil
	}
	out := &ControlFile{stages: cf.Stages}
	for _, d := range cf.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, Diagnostic{
			Kind:    d.Kind.String(),
			Line:    d.Line,
			Message: d.Text,
		})
	}
	return out
}
