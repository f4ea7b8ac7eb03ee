package parser

import (
	"fmt"
	"strings"
)

// SyntaxError reports the first grammar violation found while parsing.
type SyntaxError struct {
	Pos      Position
	Expected []TokenKind
	Got      Token
	Message  string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "syntax error at %s", e.Pos)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	} else if len(e.Expected) > 0 {
		names := make([]string, len(e.Expected))
		for i, kind := range e.Expected {
			names[i] = kind.String()
		}
		b.WriteString(": expected " + strings.Join(names, " or "))
	}
	b.WriteString(", got " + describeToken(e.Got))
	return b.String()
}

func describeToken(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenError:
		return fmt.Sprintf("unexpected character %q", tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}
