// Package parser implements FIGfont (FLF 2.0) parsing.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// minHeaderFields is the number of required numeric fields in a FIGfont header
	minHeaderFields = 5
	// firstPrintableASCII is the first printable ASCII character (space)
	firstPrintableASCII = 32
	// lastPrintableASCII is the last printable ASCII character (~)
	lastPrintableASCII = 126

	// Buffer size constants
	defaultBufferSize = 64 * 1024
	maxBufferSize     = 4 * 1024 * 1024
)

// ErrFormat is the sentinel for all malformed-font conditions: bad signature,
// missing or non-numeric header fields, and truncated glyph blocks. Every
// format error returned by Parse wraps it.
var ErrFormat = errors.New("invalid font format")

// deutschCodes are the seven required Latin-1 codepoints that follow the
// printable ASCII range in every FIGfont, in file order: Ä Ö Ü ä ö ü ß.
var deutschCodes = []rune{196, 214, 220, 228, 246, 252, 223}

// Font represents a parsed FIGfont with all its metadata and character glyphs.
type Font struct {
	// Characters maps codepoints to their glyph rows. Every glyph has
	// exactly Height rows and no row contains the hardblank character;
	// it is substituted with a plain space at parse time.
	Characters map[rune][]string

	// Comments contains the free-text lines that follow the header
	Comments []string

	// Signature contains the FIGfont signature prefix (e.g., "flf2a")
	Signature string

	// Hardblank is the character the font file uses for hard blanks
	Hardblank rune

	// Height is the number of rows per glyph
	Height int

	// Baseline is the number of rows from the top to the baseline
	Baseline int

	// MaxLength is the maximum glyph row length declared by the font
	MaxLength int

	// OldLayout is carried through from the header unchanged
	OldLayout int

	// CommentLines is the number of comment lines after the header
	CommentLines int

	// PrintDirection is carried through from the header unchanged
	PrintDirection int

	// FullLayout is carried through from the header unchanged
	FullLayout int

	// CodetagCount is carried through from the header unchanged
	CodetagCount int
}

// Glyph returns the rows bound to a codepoint, or false when the font
// defines no glyph for it.
func (f *Font) Glyph(code rune) ([]string, bool) {
	g, ok := f.Characters[code]
	return g, ok
}

// Parse reads a FIGfont from the provided reader and returns a parsed Font.
// The reader may carry either a plain font stream or a zip archive wrapping
// one; the leading four bytes decide which (see NewSource).
func Parse(r io.Reader) (*Font, error) {
	src, err := NewSource(r)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(src)
	// Increase buffer size for large fonts (default is 64KB, set max to 4MB)
	scanner.Buffer(make([]byte, 0, defaultBufferSize), maxBufferSize)

	font, err := parseHeader(scanner)
	if err != nil {
		return nil, err
	}

	if err := parseRequiredGlyphs(scanner, font); err != nil {
		return nil, err
	}

	if err := parseCodeTaggedGlyphs(scanner, font); err != nil {
		return nil, err
	}

	return font, nil
}

// parseHeader reads the signature line and comment block.
func parseHeader(scanner *bufio.Scanner) (*Font, error) {
	headerLine, err := readHeaderLine(scanner)
	if err != nil {
		return nil, err
	}

	font := &Font{}

	fields := strings.Fields(headerLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty header line", ErrFormat)
	}

	// The first token is the signature; its final rune is the hardblank.
	// The byte-level magic check already happened in NewSource, so the
	// signature prefix is validated non-strictly here.
	if err := parseSignature(fields[0], font); err != nil {
		return nil, err
	}

	if len(fields)-1 < minHeaderFields {
		return nil, fmt.Errorf("%w: insufficient header fields: got %d, need at least %d",
			ErrFormat, len(fields)-1, minHeaderFields)
	}

	if err := parseRequiredFields(fields[1:], font); err != nil {
		return nil, err
	}
	parseOptionalFields(fields[1:], font)

	if err := readCommentLines(scanner, font); err != nil {
		return nil, err
	}

	// Capacity for ASCII (95) + Deutsch (7) + some code-tagged extras
	font.Characters = make(map[rune][]string, 128)

	return font, nil
}

// readHeaderLine reads the first line from the scanner.
func readHeaderLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("error reading header: %w", err)
		}
		return "", fmt.Errorf("%w: empty font data", ErrFormat)
	}

	headerLine := strings.TrimRight(scanner.Text(), "\r\n")

	// Strip UTF-8 BOM from the first line if present. Some .flf files in
	// the wild carry one.
	const utf8BOM = "\ufeff"
	headerLine = strings.TrimPrefix(headerLine, utf8BOM)
	if strings.TrimSpace(headerLine) == "" {
		return "", fmt.Errorf("%w: empty font data", ErrFormat)
	}

	return headerLine, nil
}

// parseSignature extracts the signature and hardblank from the first
// header token.
func parseSignature(token string, font *Font) error {
	runes := []rune(token)
	if len(runes) < 2 || !strings.HasPrefix(token, "flf2") {
		return fmt.Errorf("%w: invalid signature %q", ErrFormat, token)
	}

	hardblank := runes[len(runes)-1]
	// The hardblank cannot be space, CR, LF, or NUL
	if hardblank == ' ' || hardblank == '\r' || hardblank == '\n' || hardblank == '\x00' {
		return fmt.Errorf("%w: invalid hardblank character", ErrFormat)
	}

	font.Signature = string(runes[:len(runes)-1])
	font.Hardblank = hardblank
	return nil
}

// parseRequiredFields parses the five required numeric header fields.
func parseRequiredFields(fields []string, font *Font) error {
	height, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("%w: invalid height: %v", ErrFormat, err)
	}
	if height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %d", ErrFormat, height)
	}
	font.Height = height

	baseline, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("%w: invalid baseline: %v", ErrFormat, err)
	}
	font.Baseline = baseline

	maxLength, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("%w: invalid maxlength: %v", ErrFormat, err)
	}
	font.MaxLength = maxLength

	oldLayout, err := strconv.Atoi(fields[3])
	if err != nil {
		return fmt.Errorf("%w: invalid old layout: %v", ErrFormat, err)
	}
	font.OldLayout = oldLayout

	commentLines, err := strconv.Atoi(fields[4])
	if err != nil {
		return fmt.Errorf("%w: invalid comment lines: %v", ErrFormat, err)
	}
	if commentLines < 0 {
		return fmt.Errorf("%w: comment lines must be non-negative, got %d", ErrFormat, commentLines)
	}
	font.CommentLines = commentLines

	return nil
}

// parseOptionalFields parses printDirection, fullLayout and codetagCount
// when present. They are carried through unchanged; fonts that predate the
// extended header simply omit them.
func parseOptionalFields(fields []string, font *Font) {
	const (
		printDirectionField = 5
		fullLayoutField     = 6
		codetagCountField   = 7
	)

	if len(fields) > printDirectionField {
		if val, err := strconv.Atoi(fields[printDirectionField]); err == nil {
			font.PrintDirection = val
		}
	}
	if len(fields) > fullLayoutField {
		if val, err := strconv.Atoi(fields[fullLayoutField]); err == nil {
			font.FullLayout = val
		}
	}
	if len(fields) > codetagCountField {
		if val, err := strconv.Atoi(fields[codetagCountField]); err == nil {
			font.CodetagCount = val
		}
	}
}

// readCommentLines captures the comment block verbatim.
func readCommentLines(scanner *bufio.Scanner, font *Font) error {
	font.Comments = make([]string, 0, font.CommentLines)
	for i := 0; i < font.CommentLines; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading comment line %d: %w", i+1, err)
			}
			return fmt.Errorf("%w: expected %d comment lines, got %d", ErrFormat, font.CommentLines, i)
		}
		font.Comments = append(font.Comments, strings.TrimRight(scanner.Text(), "\r\n"))
	}
	return nil
}

// parseRequiredGlyphs binds the fixed required set: printable ASCII 32-126
// followed by the seven Deutsch codepoints, in that order regardless of any
// annotation in the file.
func parseRequiredGlyphs(scanner *bufio.Scanner, font *Font) error {
	for code := rune(firstPrintableASCII); code <= lastPrintableASCII; code++ {
		glyph, err := parseGlyph(scanner, font)
		if err != nil {
			return fmt.Errorf("glyph for character %d (%c): %w", code, code, err)
		}
		font.Characters[code] = glyph
	}

	for _, code := range deutschCodes {
		glyph, err := parseGlyph(scanner, font)
		if err != nil {
			return fmt.Errorf("glyph for character %d: %w", code, err)
		}
		font.Characters[code] = glyph
	}

	return nil
}

// parseCodeTaggedGlyphs reads optional extension records until the end of
// the stream. Each record is one line whose first token is the decimal
// codepoint (a trailing annotation is discarded) followed by a glyph block.
// A negative code marks an exclusion: its block is read to keep the stream
// position consistent but produces no table entry.
func parseCodeTaggedGlyphs(scanner *bufio.Scanner, font *Font) error {
	for {
		tagLine, ok, err := readCodeTagLine(scanner)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		code, err := parseCodeTag(strings.Fields(tagLine)[0])
		if err != nil {
			return err
		}

		glyph, err := parseGlyph(scanner, font)
		if err != nil {
			return fmt.Errorf("glyph for code tag %d: %w", code, err)
		}
		if code >= 0 {
			font.Characters[rune(code)] = glyph
		}
	}
}

// readCodeTagLine fetches the next non-blank line, reporting ok=false at a
// clean end of stream.
func readCodeTagLine(scanner *bufio.Scanner) (string, bool, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("error reading code tag: %w", err)
	}
	return "", false, nil
}

// parseCodeTag parses a code tag token. Decimal is the common case, even
// with leading zeros; a few fonts in the wild use an explicit 0x prefix.
func parseCodeTag(tok string) (int64, error) {
	digits := tok
	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
		base = 16
	}

	code, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid code tag %q", ErrFormat, tok)
	}
	return code, nil
}

// parseGlyph reads one glyph block: Height consecutive lines, cleaned.
func parseGlyph(scanner *bufio.Scanner, font *Font) ([]string, error) {
	glyph := make([]string, 0, font.Height)

	for row := 0; row < font.Height; row++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("error reading row %d: %w", row+1, err)
			}
			return nil, fmt.Errorf("%w: truncated glyph block: expected %d rows, got %d",
				ErrFormat, font.Height, row)
		}
		glyph = append(glyph, cleanGlyphRow(scanner.Text(), font.Hardblank))
	}

	return glyph, nil
}

// cleanGlyphRow strips the row terminator and substitutes hardblanks.
// The terminator is the line's own last character; the format allows it to
// be repeated, and the final row of a block conventionally carries two.
func cleanGlyphRow(line string, hardblank rune) string {
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return ""
	}

	term, sz := utf8.DecodeLastRuneInString(line)
	if term == utf8.RuneError && sz == 1 {
		// Invalid UTF-8 at line end: treat the raw byte as the terminator
		line = strings.ReplaceAll(line, line[len(line)-1:], "")
	} else {
		line = strings.ReplaceAll(line, string(term), "")
	}

	return strings.ReplaceAll(line, string(hardblank), " ")
}
