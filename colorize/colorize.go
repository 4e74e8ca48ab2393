// Package colorize decorates already-composed banner rows with ANSI
// colors. It is purely presentational: the rendering core produces plain
// rows and this package wraps them in escape sequences for terminals.
package colorize

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const reset = "\x1b[0m"

// Scheme selects how rows are colored: a single named color, or the
// rainbow sweep.
type Scheme struct {
	name    string
	rainbow bool
	sgr     string
}

// Name returns the canonical scheme name.
func (s Scheme) Name() string {
	return s.name
}

// namedColors maps scheme names to their SGR foreground codes.
var namedColors = map[string]string{
	"black":   "\x1b[30m",
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
	"gray":    "\x1b[90m",
}

// ParseScheme resolves a scheme name, case-insensitively. "rainbow"
// selects the hue sweep; anything else must be a known color name.
func ParseScheme(name string) (Scheme, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "rainbow" {
		return Scheme{name: lower, rainbow: true}, nil
	}
	if sgr, ok := namedColors[lower]; ok {
		return Scheme{name: lower, sgr: sgr}, nil
	}
	return Scheme{}, fmt.Errorf("unknown color scheme %q", name)
}

// Names returns all accepted scheme names.
func Names() []string {
	names := make([]string, 0, len(namedColors)+1)
	names = append(names, "rainbow")
	for name := range namedColors {
		names = append(names, name)
	}
	return names
}

// Lines colors each row according to the scheme and returns the decorated
// rows. Input rows are not modified.
func Lines(rows []string, scheme Scheme) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		if scheme.rainbow {
			out[i] = rainbowRow(row, i)
		} else {
			out[i] = plainRow(row, scheme.sgr)
		}
	}
	return out
}

func plainRow(row, sgr string) string {
	if row == "" {
		return row
	}
	return sgr + row + reset
}

// rainbowRow sweeps the hue across the columns of a row, offset per row so
// the bands run diagonally.
func rainbowRow(row string, rowIndex int) string {
	if row == "" {
		return row
	}

	var sb strings.Builder
	sb.Grow(len(row) * 20)

	col := 0
	for _, r := range row {
		if r == ' ' {
			sb.WriteRune(r)
			col++
			continue
		}
		hue := float64((col*4+rowIndex*12)%360)
		c := colorful.Hsv(hue, 1, 1)
		cr, cg, cb := c.RGB255()
		fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm%c", cr, cg, cb, r)
		col++
	}
	sb.WriteString(reset)
	return sb.String()
}
