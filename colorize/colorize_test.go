package colorize

import (
	"strings"
	"testing"
)

func TestParseScheme(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"red", "red"},
		{"RED", "red"},
		{"Rainbow", "rainbow"},
		{"  cyan  ", "cyan"},
		{"gray", "gray"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			scheme, err := ParseScheme(tt.input)
			if err != nil {
				t.Fatalf("ParseScheme(%q) error = %v", tt.input, err)
			}
			if scheme.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", scheme.Name(), tt.want)
			}
		})
	}
}

func TestParseScheme_Unknown(t *testing.T) {
	if _, err := ParseScheme("chartreuse"); err == nil {
		t.Error("ParseScheme(chartreuse) expected error, got nil")
	}
	if _, err := ParseScheme(""); err == nil {
		t.Error("ParseScheme of empty name expected error, got nil")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(namedColors)+1 {
		t.Errorf("Names() returned %d entries, want %d", len(names), len(namedColors)+1)
	}
	if names[0] != "rainbow" {
		t.Errorf("Names()[0] = %q, want rainbow", names[0])
	}
}

func TestLines_NamedColor(t *testing.T) {
	scheme, err := ParseScheme("green")
	if err != nil {
		t.Fatal(err)
	}

	rows := Lines([]string{"abc", "", "  x"}, scheme)
	if len(rows) != 3 {
		t.Fatalf("Lines() returned %d rows, want 3", len(rows))
	}
	if rows[0] != "\x1b[32m"+"abc"+"\x1b[0m" {
		t.Errorf("rows[0] = %q", rows[0])
	}
	if rows[1] != "" {
		t.Errorf("empty rows stay empty, got %q", rows[1])
	}
	if !strings.HasSuffix(rows[2], "\x1b[0m") {
		t.Errorf("rows[2] = %q, missing reset", rows[2])
	}
}

func TestLines_Rainbow(t *testing.T) {
	scheme, err := ParseScheme("rainbow")
	if err != nil {
		t.Fatal(err)
	}

	rows := Lines([]string{"ab c"}, scheme)
	got := rows[0]

	if !strings.Contains(got, "\x1b[38;2;") {
		t.Errorf("rainbow row %q has no truecolor sequence", got)
	}
	if !strings.HasSuffix(got, "\x1b[0m") {
		t.Errorf("rainbow row %q missing trailing reset", got)
	}
	// Stripping the escapes recovers the original row, spaces included
	if plain := stripSGR(got); plain != "ab c" {
		t.Errorf("stripped rainbow row = %q, want %q", plain, "ab c")
	}
}

// stripSGR removes ESC[...m sequences.
func stripSGR(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func TestLines_InputUnmodified(t *testing.T) {
	scheme, err := ParseScheme("blue")
	if err != nil {
		t.Fatal(err)
	}

	in := []string{"row"}
	_ = Lines(in, scheme)
	if in[0] != "row" {
		t.Errorf("input row mutated to %q", in[0])
	}
}
