package figterm

import (
	"errors"

	"github.com/figterm/figterm/internal/control"
	"github.com/figterm/figterm/internal/diag"
	"github.com/figterm/figterm/internal/parser"
)

// Font represents an immutable FIGfont that can be safely shared across
// goroutines.
//
// Font data is loaded once and never modified, making it safe for
// concurrent use without locking.
type Font struct {
	// glyphs maps codepoints to their row blocks (unexported for immutability)
	glyphs map[rune][]string

	// Name is the font name (e.g., "standard")
	Name string

	// Hardblank is the character the font file used for hard blanks.
	// Glyph rows never contain it; it is substituted at parse time.
	Hardblank rune

	// Height is the number of rows per glyph
	Height int

	// Baseline is the number of rows from the top to the baseline
	Baseline int

	// MaxLen is the maximum glyph row length declared by the font
	MaxLen int

	// OldLayout is header metadata carried through unchanged
	OldLayout int

	// PrintDirection is header metadata carried through unchanged
	PrintDirection int

	// FullLayout is header metadata carried through unchanged
	FullLayout int

	// CodetagCount is header metadata carried through unchanged
	CodetagCount int

	// CommentLines is the number of comment lines in the font file
	CommentLines int
}

// Glyph returns the row block for a codepoint, or false if the font does
// not define one. The returned slice must not be modified by the caller.
func (f *Font) Glyph(code rune) ([]string, bool) {
	if f == nil || f.glyphs == nil {
		return nil, false
	}
	glyph, ok := f.glyphs[code]
	return glyph, ok
}

// Glyphs returns the number of codepoints the font defines, required set
// and code-tagged extensions together.
func (f *Font) Glyphs() int {
	if f == nil {
		return 0
	}
	return len(f.glyphs)
}

// ControlFile represents a parsed character-remapping script: its
// transformation stages in file order plus the non-fatal diagnostics the
// parse accumulated.
type ControlFile struct {
	stages []*control.Stage

	// Name is the control file name (e.g., "upper")
	Name string

	// Diagnostics are the non-fatal issues found while parsing:
	// unsupported legacy directives and unrecognized lines.
	Diagnostics []Diagnostic
}

// Stages returns the number of transformation stages the file defines.
func (c *ControlFile) Stages() int {
	if c == nil {
		return 0
	}
	return len(c.stages)
}

// Diagnostic is a non-fatal issue found while parsing a control file.
type Diagnostic struct {
	// Kind is "unsupported directive" or "unrecognized line"
	Kind string

	// Line is the 1-based line number
	Line int

	// Message carries the directive or the offending line text
	Message string
}

// Common errors returned by the figterm package
var (
	// ErrFontFormat is returned when a font stream is malformed: bad
	// magic, bad header, or a truncated glyph block
	ErrFontFormat = parser.ErrFormat

	// ErrControlFormat is returned when a control file declares a ranged
	// substitution whose sides differ in length
	ErrControlFormat = control.ErrFormat

	// ErrNotFound is returned when a referenced font or control file
	// does not exist
	ErrNotFound = errors.New("font or control file not found")
)

// Option configures rendering behavior.
type Option func(*options)

type options struct {
	controls       []*ControlFile
	trimWhitespace bool
	debug          *diag.Session
}

func defaultOptions() *options {
	return &options{}
}

// WithControlFiles applies the given control files' transformation stages,
// in argument order, to every input codepoint before glyph lookup.
func WithControlFiles(cfs ...*ControlFile) Option {
	return func(opts *options) {
		opts.controls = append(opts.controls, cfs...)
	}
}

// WithTrimWhitespace enables trimming of trailing whitespace from each
// output row. By default trailing spaces are preserved so output stays
// rectangular.
func WithTrimWhitespace(trim bool) Option {
	return func(opts *options) {
		opts.trimWhitespace = trim
	}
}

// WithDebug attaches a diagnostic session to the render call. The session
// must come from this module's tracing facility; other values are ignored.
func WithDebug(session interface{}) Option {
	return func(opts *options) {
		if s, ok := session.(*diag.Session); ok {
			opts.debug = s
		}
	}
}

func (o *options) stages() []*control.Stage {
	var stages []*control.Stage
	for _, cf := range o.controls {
		if cf != nil {
			stages = append(stages, cf.stages...)
		}
	}
	return stages
}
