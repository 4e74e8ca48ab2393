package control

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// errBadToken reports a token that matches no form of the char-token
// grammar. The caller turns it into a skipped-line diagnostic.
var errBadToken = errors.New("invalid character token")

// controlEscapes maps the single-letter escapes to their control-code
// values: \a \b \e \f \n \r \t \v.
var controlEscapes = map[byte]rune{
	'a': 7,
	'b': 8,
	'e': 27,
	'f': 12,
	'n': 10,
	'r': 13,
	't': 9,
	'v': 11,
}

// DecodeCharToken parses one textual character token into a codepoint.
//
// Forms, in priority order:
//
//	\0x2A      hexadecimal; repeated internal \0x prefixes, used by some
//	           files to mark every byte, are stripped before parsing
//	\65  \-3   decimal, optionally signed
//	"\ "       space (32)
//	\a … \v    control-code escapes
//	\\         backslash (92)
//	x          any other single character is its own codepoint
//
// A token matches exactly one form; anything else is an error.
func DecodeCharToken(token string) (rune, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: empty token", errBadToken)
	}

	if strings.HasPrefix(token, `\0x`) || strings.HasPrefix(token, `\0X`) {
		return decodeHexToken(token)
	}

	if token[0] == '\\' && len(token) > 1 {
		return decodeEscapeToken(token)
	}

	// Literal single character
	r, size := utf8.DecodeRuneInString(token)
	if size != len(token) || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q", errBadToken, token)
	}
	return r, nil
}

// decodeHexToken parses \0x-prefixed hexadecimal, tolerating per-byte
// \0x markers inside the token (\0xC3\0xA9 reads as 0xC3A9).
func decodeHexToken(token string) (rune, error) {
	digits := token[3:]
	digits = strings.ReplaceAll(digits, `\0x`, "")
	digits = strings.ReplaceAll(digits, `\0X`, "")
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", errBadToken, token)
	}

	v, err := strconv.ParseInt(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadToken, token)
	}
	return rune(v), nil
}

// decodeEscapeToken parses the backslash forms other than \0x.
func decodeEscapeToken(token string) (rune, error) {
	body := token[1:]

	// Signed decimal: \65, \-3, \+120
	if isSignedDigits(body) {
		v, err := strconv.ParseInt(body, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errBadToken, token)
		}
		return rune(v), nil
	}

	if len(body) == 1 {
		switch body[0] {
		case ' ':
			return 32, nil
		case '\\':
			return 92, nil
		default:
			if v, ok := controlEscapes[body[0]]; ok {
				return v, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: %q", errBadToken, token)
}

// isSignedDigits reports whether s is one or more decimal digits with an
// optional leading sign.
func isSignedDigits(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
