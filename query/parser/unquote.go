package parser

import (
	"errors"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var errMalformedEscape = errors.New("malformed escape sequence")

// Unquote decodes a single- or double-quoted string literal the way a
// script engine evaluates the same literal: the quotes are removed, \n \t
// \r \b \f \v \0 \xHH \uHHHH and \u{H...} are expanded, a backslash before
// a line break is a line continuation, and any other escaped character
// stands for itself (so \' and \" yield the bare quote).
func Unquote(literal string) (string, error) {
	if len(literal) < 2 {
		return "", errors.New("string literal too short")
	}
	quote := literal[0]
	if (quote != '"' && quote != '\'') || literal[len(literal)-1] != quote {
		return "", errors.New("string literal is not quoted")
	}
	body := literal[1 : len(literal)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		ch := body[i]
		if ch != '\\' {
			b.WriteByte(ch)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", errMalformedEscape
		}
		esc := body[i]
		i++
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			if i < len(body) && isDigit(body[i]) {
				return "", errMalformedEscape
			}
			b.WriteByte(0)
		case '\n':
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			r, ok := hexValue(body, i, 2)
			if !ok {
				return "", errMalformedEscape
			}
			i += 2
			b.WriteRune(rune(r))
		case 'u':
			r, n, ok := unicodeEscape(body, i)
			if !ok {
				return "", errMalformedEscape
			}
			i += n
			if utf16.IsSurrogate(r) && i+1 < len(body) && body[i] == '\\' && body[i+1] == 'u' {
				if lo, m, ok := unicodeEscape(body, i+2); ok {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		default:
			// Re-read as a rune so multi-byte characters survive the escape.
			r, size := utf8.DecodeRuneInString(body[i-1:])
			b.WriteRune(r)
			i += size - 1
		}
	}
	return b.String(), nil
}

func unicodeEscape(s string, i int) (rune, int, bool) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 {
			return 0, 0, false
		}
		v, ok := hexValue(s, i+1, end-1)
		if !ok || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	v, ok := hexValue(s, i, 4)
	if !ok {
		return 0, 0, false
	}
	return rune(v), 4, true
}

func hexValue(s string, i, n int) (int, bool) {
	if n <= 0 || i+n > len(s) {
		return 0, false
	}
	v := 0
	for _, ch := range []byte(s[i : i+n]) {
		var d byte
		switch {
		case ch >= '0' && ch <= '9':
			d = ch - '0'
		case ch >= 'a' && ch <= 'f':
			d = ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			d = ch - 'A' + 10
		default:
			return 0, false
		}
		v = v*16 + int(d)
	}
	return v, true
}
