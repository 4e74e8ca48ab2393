package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/figterm/figterm/internal/control"
	"github.com/figterm/figterm/internal/parser"
)

func makeFont(height int, glyphs map[rune][]string) *parser.Font {
	return &parser.Font{
		Height:     height,
		Characters: glyphs,
	}
}

func render(t *testing.T, text string, font *parser.Font, opts *Options) string {
	t.Helper()
	out, err := Render(text, font, opts)
	if err != nil {
		t.Fatalf("Render(%q) error = %v", text, err)
	}
	return out
}

func TestRender_FlushFirstCharacter(t *testing.T) {
	// The first glyph is flush left, so later padded glyphs shed their own
	// margin column and letters butt up against it.
	font := makeFont(1, map[rune][]string{
		'H': {"H"},
		'i': {" i"},
	})

	if got := render(t, "Hi", font, nil); got != "Hi" {
		t.Errorf("Render(Hi) = %q, want %q", got, "Hi")
	}
}

func TestRender_PaddedFirstCharacter(t *testing.T) {
	// A padded first glyph flips the policy: glyphs keep their margins and
	// each finished row drops exactly one leading column.
	font := makeFont(1, map[rune][]string{
		'H': {" H"},
		'i': {" i"},
	})

	if got := render(t, "Hi", font, nil); got != "H i" {
		t.Errorf("Render(Hi) = %q, want %q", got, "H i")
	}
}

func TestRender_TrimAppliesToEveryRow(t *testing.T) {
	font := makeFont(3, map[rune][]string{
		'A': {" *A*", " AAA", " A A"},
		'B': {" BB ", " B B", " BB "},
	})

	want := strings.Join([]string{
		"*A* BB ",
		"AAA B B",
		"A A BB ",
	}, "\n")
	if got := render(t, "AB", font, nil); got != want {
		t.Errorf("Render(AB) =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_MixedPaddingFlushFirst(t *testing.T) {
	// With a flush first glyph, only glyphs padded on every row shed a
	// column; a glyph with one flush row keeps all its columns.
	font := makeFont(2, map[rune][]string{
		'x': {"x", "x"},
		'p': {" p", " p"},
		'q': {" q", "q "},
	})

	want := "xp q\nxpq "
	if got := render(t, "xpq", font, nil); got != want {
		t.Errorf("Render(xpq) = %q, want %q", got, want)
	}
}

func TestRender_RowShorterThanHeight(t *testing.T) {
	// A glyph with fewer rows than the font height contributes nothing to
	// the rows it lacks.
	font := makeFont(2, map[rune][]string{
		'a': {"aa", "aa"},
		'b': {"bb"},
	})

	want := "aabb\naa"
	if got := render(t, "ab", font, nil); got != want {
		t.Errorf("Render(ab) = %q, want %q", got, want)
	}
}

func TestRender_StageChainOrder(t *testing.T) {
	font := makeFont(1, map[rune][]string{
		'A': {"A"},
		'B': {"B"},
		'C': {"C"},
	})

	ab := control.NewStage()
	ab.Set('A', 'B')
	bc := control.NewStage()
	bc.Set('B', 'C')

	// A -> B -> C when the A->B stage runs first
	got := render(t, "A", font, &Options{Stages: []*control.Stage{ab, bc}})
	if got != "C" {
		t.Errorf("stages [AB BC]: Render(A) = %q, want %q", got, "C")
	}

	// Reversed, the B->C stage never sees a B
	got = render(t, "A", font, &Options{Stages: []*control.Stage{bc, ab}})
	if got != "B" {
		t.Errorf("stages [BC AB]: Render(A) = %q, want %q", got, "B")
	}
}

func TestRender_StageAppliedBeforeLookup(t *testing.T) {
	// The font has no glyph for the input codepoint, only for its mapped
	// result, so the substitution must run before lookup.
	font := makeFont(1, map[rune][]string{
		'z': {"z"},
	})

	st := control.NewStage()
	st.Set('A', 'z')

	got := render(t, "A", font, &Options{Stages: []*control.Stage{st}})
	if got != "z" {
		t.Errorf("Render(A) = %q, want %q", got, "z")
	}
}

func TestRender_FallbackGlyph(t *testing.T) {
	font := makeFont(1, map[rune][]string{
		0:   {"?"},
		'a': {"a"},
	})

	if got := render(t, "aQa", font, nil); got != "a?a" {
		t.Errorf("Render(aQa) = %q, want %q", got, "a?a")
	}
}

func TestRender_MissingGlyphSkipped(t *testing.T) {
	// No fallback glyph either: the character contributes nothing.
	font := makeFont(1, map[rune][]string{
		'a': {"a"},
		'b': {"b"},
	})

	if got := render(t, "aQb", font, nil); got != "ab" {
		t.Errorf("Render(aQb) = %q, want %q", got, "ab")
	}
}

func TestRender_TrimWhitespace(t *testing.T) {
	font := makeFont(2, map[rune][]string{
		'a': {"a  ", "aa "},
	})

	got := render(t, "a", font, &Options{TrimWhitespace: true})
	if got != "a\naa" {
		t.Errorf("Render(a) = %q, want %q", got, "a\naa")
	}
}

func TestRender_EmptyText(t *testing.T) {
	font := makeFont(3, map[rune][]string{'a': {"a", "a", "a"}})

	// Still exactly Height rows, all empty
	if got := render(t, "", font, nil); got != "\n\n" {
		t.Errorf("Render(\"\") = %q, want two newlines", got)
	}
}

func TestRender_NoTrailingNewline(t *testing.T) {
	font := makeFont(2, map[rune][]string{'a': {"a", "a"}})

	got := render(t, "a", font, nil)
	if strings.HasSuffix(got, "\n") {
		t.Errorf("Render output %q must not end with a newline", got)
	}
	if lines := strings.Split(got, "\n"); len(lines) != font.Height {
		t.Errorf("Render produced %d rows, want %d", len(lines), font.Height)
	}
}

func TestRender_NilFont(t *testing.T) {
	if _, err := Render("hi", nil, nil); !errors.Is(err, ErrNilFont) {
		t.Errorf("Render with nil font: error = %v, want ErrNilFont", err)
	}
}

func TestRender_GraphemeCluster(t *testing.T) {
	// A combining sequence is one unit keyed by its base codepoint.
	font := makeFont(1, map[rune][]string{
		'e': {"e"},
		'x': {"x"},
	})

	got := render(t, "xéx", font, nil)
	if got != "xex" {
		t.Errorf("Render(xe\\u0301x) = %q, want %q", got, "xex")
	}
}

func TestRenderTo_WriterOutput(t *testing.T) {
	font := makeFont(2, map[rune][]string{'a': {"aa", "aa"}})

	var sb strings.Builder
	if err := RenderTo(&sb, "a", font, nil); err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if got := sb.String(); got != "aa\naa" {
		t.Errorf("RenderTo wrote %q, want %q", got, "aa\naa")
	}
}
