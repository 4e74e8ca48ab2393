// Package renderer composes parsed FIGfont glyphs into output rows.
package renderer

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/npillmayer/uax/grapheme"

	"github.com/figterm/figterm/internal/control"
	"github.com/figterm/figterm/internal/diag"
	"github.com/figterm/figterm/internal/parser"
)

// ErrNilFont is returned when rendering is attempted without a font.
var ErrNilFont = errors.New("nil font")

// fallbackCode is the designated missing-character glyph. A codepoint the
// font does not define renders with this glyph; if the font defines no
// fallback either, the character contributes nothing.
const fallbackCode = rune(0)

// Options configures a render call.
type Options struct {
	// Stages are the control-file transformation stages, applied to each
	// input codepoint left to right before glyph lookup.
	Stages []*control.Stage

	// TrimWhitespace removes trailing spaces from each output row.
	TrimWhitespace bool

	// Debug receives trace events for this call; nil disables tracing.
	Debug *diag.Session
}

var graphemeSetup sync.Once

// graphemes splits text into user-perceived characters. A combining
// sequence counts as one unit.
func graphemes(text string) []string {
	// uax cannot segment an empty string
	if text == "" {
		return nil
	}
	graphemeSetup.Do(grapheme.SetupGraphemeClasses)

	gstr := grapheme.StringFromString(text)
	out := make([]string, 0, gstr.Len())
	for i := 0; i < gstr.Len(); i++ {
		out = append(out, gstr.Nth(i))
	}
	return out
}

// RenderTo streams the composed output rows to w: exactly font.Height rows,
// separated by newlines, with no trailing newline. Rows are produced one at
// a time, so very tall fonts never need the whole output in memory.
func RenderTo(w io.Writer, text string, font *parser.Font, opts *Options) error {
	if font == nil {
		return ErrNilFont
	}

	var (
		stages []*control.Stage
		dbg    *diag.Session
		trim   bool
	)
	if opts != nil {
		stages = opts.Stages
		dbg = opts.Debug
		trim = opts.TrimWhitespace
	}

	var startTime time.Time
	if dbg != nil {
		startTime = time.Now()
		dbg.Emit("render", "Start", diag.RenderStartData{
			Text:       text,
			TextLength: len(text),
			Height:     font.Height,
			Stages:     len(stages),
		})
	}

	state := acquireRenderState()
	defer releaseRenderState(state)

	clusters := graphemes(text)
	resolveGlyphs(state, clusters, font, stages, dbg)

	// The first character of the string settles the leading-margin policy
	// for every row: a first glyph whose rows all begin with a space makes
	// each composed row drop its first column.
	trimRow := false
	if len(state.resolved) > 0 && state.resolved[0] != nil {
		trimRow = glyphPadded(state.resolved[0])
	}
	if dbg != nil {
		dbg.Emit("render", "TrimDecision", diag.TrimDecisionData{TrimRow: trimRow})
	}

	bytesWritten := 0
	for row := 0; row < font.Height; row++ {
		line := composeRow(state, row, trimRow)
		if trim {
			line = strings.TrimRight(line, " ")
		}
		if row > 0 {
			if _, err := w.Write(newline); err != nil {
				return err
			}
			bytesWritten++
		}
		n, err := io.WriteString(w, line)
		bytesWritten += n
		if err != nil {
			return err
		}
	}

	if dbg != nil {
		dbg.Emit("render", "End", diag.RenderEndData{
			Rows:         font.Height,
			Clusters:     len(clusters),
			ElapsedMs:    time.Since(startTime).Milliseconds(),
			BytesWritten: bytesWritten,
		})
	}

	return nil
}

var newline = []byte{'\n'}

// Render composes the output and returns it as a single string.
func Render(text string, font *parser.Font, opts *Options) (string, error) {
	var sb strings.Builder
	if font != nil {
		// Estimate: ~8 output columns per input byte per row
		estimated := len(text) * 8 * font.Height
		if estimated > 0 && estimated < 1<<20 {
			sb.Grow(estimated)
		}
	}

	if err := RenderTo(&sb, text, font, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// resolveGlyphs maps each cluster through the stage chain and the glyph
// table. A nil entry means the character contributes nothing.
func resolveGlyphs(state *renderState, clusters []string, font *parser.Font, stages []*control.Stage, dbg *diag.Session) {
	for i, cluster := range clusters {
		code, _ := utf8.DecodeRuneInString(cluster)

		mapped := code
		for _, stage := range stages {
			mapped = stage.Apply(mapped)
		}

		glyph, ok := font.Glyph(mapped)
		fellBack := false
		if !ok {
			glyph, ok = font.Glyph(fallbackCode)
			fellBack = ok
		}
		if !ok {
			glyph = nil
		}

		if dbg != nil {
			dbg.Emit("render", "Glyph", diag.GlyphData{
				Index:    i,
				Cluster:  cluster,
				Code:     code,
				Mapped:   mapped,
				Fallback: fellBack,
				Skipped:  glyph == nil,
			})
		}

		state.resolved = append(state.resolved, glyph)
	}
}

// composeRow builds one output row from the resolved glyphs.
//
// The single margin column baked into most fonts is dropped according to
// the policy the first character decided: when the first glyph is padded,
// the finished row loses its leading column; when it is not, each later
// padded glyph sheds its own margin column instead, so letters stay flush
// against a flush-left first letter.
func composeRow(state *renderState, row int, trimRow bool) string {
	buf := state.line[:0]

	for k, glyph := range state.resolved {
		if glyph == nil || row >= len(glyph) {
			continue
		}
		s := glyph[row]
		if k > 0 && !trimRow && len(s) > 0 && glyphPadded(glyph) {
			s = s[1:]
		}
		buf = append(buf, s...)
	}

	out := buf
	if trimRow && len(out) > 0 {
		out = out[1:]
	}

	state.line = buf[:0]
	return string(out)
}

// glyphPadded reports whether every row of a glyph begins with a space.
func glyphPadded(glyph []string) bool {
	for _, row := range glyph {
		if len(row) == 0 || row[0] != ' ' {
			return false
		}
	}
	return len(glyph) > 0
}
