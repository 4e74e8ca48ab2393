// Package control implements figlet control-file (.flc) parsing.
//
// A control file is a line-oriented script of character substitutions.
// Substitutions accumulate into a transformation stage until an `f`
// (freeze) line closes it; a file may define several stages, applied in
// order at render time.
package control

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ErrFormat is the sentinel for fatal control-file conditions. The only one
// is a ranged substitution whose input and output spans differ in length.
var ErrFormat = errors.New("invalid control file")

// Stage is one ordered codepoint-to-codepoint substitution table. Entries
// keep first-insertion order; redefining a codepoint within a stage keeps
// its position and takes the new value (last write wins).
type Stage struct {
	table *linkedhashmap.Map
}

// NewStage returns an empty stage.
func NewStage() *Stage {
	return &Stage{table: linkedhashmap.New()}
}

// Set binds in -> out, overwriting any earlier binding for in.
func (s *Stage) Set(in, out rune) {
	s.table.Put(in, out)
}

// Lookup reports the replacement for in, if the stage defines one.
func (s *Stage) Lookup(in rune) (rune, bool) {
	v, ok := s.table.Get(in)
	if !ok {
		return 0, false
	}
	return v.(rune), true
}

// Apply maps in through the stage, returning it unchanged when the stage
// has no entry for it.
func (s *Stage) Apply(in rune) rune {
	if out, ok := s.Lookup(in); ok {
		return out
	}
	return in
}

// Len returns the number of entries in the stage.
func (s *Stage) Len() int {
	return s.table.Size()
}

// Each calls f for every entry in insertion order.
func (s *Stage) Each(f func(in, out rune)) {
	s.table.Each(func(k, v interface{}) {
		f(k.(rune), v.(rune))
	})
}

// DiagKind classifies a non-fatal parse diagnostic.
type DiagKind int

const (
	// DiagUnsupportedDirective marks a recognized legacy input-mode
	// command (h, j, b, g) that this implementation does not support.
	DiagUnsupportedDirective DiagKind = iota

	// DiagUnrecognizedLine marks a line matching no known grammar.
	DiagUnrecognizedLine
)

func (k DiagKind) String() string {
	switch k {
	case DiagUnsupportedDirective:
		return "unsupported directive"
	case DiagUnrecognizedLine:
		return "unrecognized line"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal issue found while parsing. Diagnostics
// accumulate on the result and never abort the parse.
type Diagnostic struct {
	Kind DiagKind
	Line int
	Text string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Text)
}

// ControlFile is a parsed control file: its transformation stages in file
// order plus any diagnostics raised along the way.
type ControlFile struct {
	Stages      []*Stage
	Diagnostics []Diagnostic
}

// parseState carries the accumulating stage and diagnostics between lines.
type parseState struct {
	out     *ControlFile
	current *Stage
	lineNo  int
}

// Parse reads a control file and returns its stages in order. The final
// accumulated stage is emitted even without a trailing freeze line, so the
// result always holds at least one stage (possibly empty).
func Parse(r io.Reader) (*ControlFile, error) {
	scanner := bufio.NewScanner(r)

	st := &parseState{
		out:     &ControlFile{},
		current: NewStage(),
	}

	for scanner.Scan() {
		st.lineNo++
		if err := st.parseLine(strings.TrimRight(scanner.Text(), "\r\n")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading control file: %w", err)
	}

	st.out.Stages = append(st.out.Stages, st.current)
	return st.out, nil
}

// parseLine dispatches one line of the script. The first matching pattern
// wins; the command letter is case-sensitive.
func (st *parseState) parseLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	// Tokenize the untrimmed line: trimming first would eat the trailing
	// space of a "\ " token.
	toks := splitTokens(line)
	if len(toks) == 0 {
		return nil
	}

	switch toks[0] {
	case "t":
		if len(toks) < 3 {
			st.unrecognized(trimmed)
			return nil
		}
		return st.substitute(toks[1], toks[2], trimmed)
	case "f":
		// Freeze: emit the accumulated stage, even if empty
		st.out.Stages = append(st.out.Stages, st.current)
		st.current = NewStage()
		return nil
	case "h", "j", "b", "g":
		st.diag(DiagUnsupportedDirective, fmt.Sprintf("input-mode directive %q is not supported", toks[0]))
		return nil
	case "u":
		// The broadest text encoding is always assumed
		return nil
	}

	// Optional one-line file-format header
	if strings.HasPrefix(toks[0], "flc2") {
		return nil
	}

	// Bare numeric pair: same as the t form, plain hex or decimal only
	if len(toks) >= 2 {
		in, inOK := parsePlainNumber(toks[0])
		out, outOK := parsePlainNumber(toks[1])
		if inOK && outOK {
			st.current.Set(in, out)
			return nil
		}
	}

	st.unrecognized(trimmed)
	return nil
}

// substitute handles a t command: either two single tokens or two ranges.
func (st *parseState) substitute(inTok, outTok, line string) error {
	inLo, inHi, ok := parseSpan(inTok)
	if !ok {
		st.unrecognized(line)
		return nil
	}
	outLo, outHi, ok := parseSpan(outTok)
	if !ok {
		st.unrecognized(line)
		return nil
	}

	inLen := spanLen(inLo, inHi)
	outLen := spanLen(outLo, outHi)
	if inLen != outLen {
		return fmt.Errorf("%w: line %d: range length mismatch: %d vs %d",
			ErrFormat, st.lineNo, inLen, outLen)
	}

	inStep := spanStep(inLo, inHi)
	outStep := spanStep(outLo, outHi)
	for k := rune(0); k < rune(inLen); k++ {
		st.current.Set(inLo+k*inStep, outLo+k*outStep)
	}
	return nil
}

func (st *parseState) diag(kind DiagKind, text string) {
	st.out.Diagnostics = append(st.out.Diagnostics, Diagnostic{
		Kind: kind,
		Line: st.lineNo,
		Text: text,
	})
}

func (st *parseState) unrecognized(line string) {
	st.diag(DiagUnrecognizedLine, line)
}

// parseSpan decodes a token as an inclusive codepoint span. A plain token
// is the one-element span [v, v]; a ranged token a-b yields [a, b]. The
// range separator is a '-' that neither starts the token nor follows a
// backslash, so negative decimal escapes survive.
func parseSpan(tok string) (lo, hi rune, ok bool) {
	if at := rangeSeparator(tok); at > 0 {
		a, err := DecodeCharToken(tok[:at])
		if err != nil {
			return 0, 0, false
		}
		b, err := DecodeCharToken(tok[at+1:])
		if err != nil {
			return 0, 0, false
		}
		return a, b, true
	}

	v, err := DecodeCharToken(tok)
	if err != nil {
		return 0, 0, false
	}
	return v, v, true
}

// rangeSeparator returns the index of the range '-', or -1 when the token
// is a single endpoint.
func rangeSeparator(tok string) int {
	for i := 1; i < len(tok)-1; i++ {
		if tok[i] == '-' && tok[i-1] != '\\' {
			return i
		}
	}
	return -1
}

func spanLen(lo, hi rune) int {
	if hi >= lo {
		return int(hi-lo) + 1
	}
	return int(lo-hi) + 1
}

func spanStep(lo, hi rune) rune {
	if hi >= lo {
		return 1
	}
	return -1
}

// parsePlainNumber accepts plain hex (0x2A) or decimal literals with no
// escape prefix, as used by the bare numeric-pair form.
func parsePlainNumber(tok string) (rune, bool) {
	if strings.HasPrefix(tok, `\`) {
		return 0, false
	}
	v, err := strconv.ParseInt(tok, 0, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// splitTokens splits a line on spaces while keeping the "\ " escape
// together: a token ending in a lone backslash absorbs the space that
// follows it.
func splitTokens(line string) []string {
	var toks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, buf.String())
			buf.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' {
			cur := buf.String()
			if strings.HasSuffix(cur, `\`) && !strings.HasSuffix(cur, `\\`) && c == ' ' {
				buf.WriteByte(' ')
				continue
			}
			flush()
			continue
		}
		buf.WriteByte(c)
	}
	flush()

	return toks
}
