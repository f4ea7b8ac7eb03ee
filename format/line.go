package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/value"
)

// LineEncoder writes a result for shell pipelines: a list produces one
// line per element, anything else a single line. Strings are written
// without quotes, arrays and objects as compact JSON.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(v any) error {
	text, err := e.MarshalText(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(v any) ([]byte, error) {
	var sb strings.Builder
	items, ok := value.AsList(v)
	if !ok {
		items = []any{v}
	}
	for _, item := range items {
		sb.WriteString(value.ToString(item))
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

// TokenEncoder lists tokens one per line as
// kind, offsets, line:column and the quoted literal, separated by tabs.
type TokenEncoder struct {
	w      io.Writer
	trivia bool
}

// NewTokenEncoder returns an encoder that skips whitespace and comments
// unless trivia is set.
func NewTokenEncoder(w io.Writer, trivia bool) *TokenEncoder {
	return &TokenEncoder{w: w, trivia: trivia}
}

func (e *TokenEncoder) Encode(tokens []parser.Token) error {
	text, err := e.MarshalText(tokens)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TokenEncoder) MarshalText(tokens []parser.Token) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.Kind.IsTrivia() && !e.trivia {
			continue
		}
		fmt.Fprintf(&sb, "%s\t%d-%d\t%s\t%q\n",
			tok.Kind,
			tok.Start(),
			tok.End(),
			tok.Span.Start,
			tok.Literal,
		)
	}
	return []byte(sb.String()), nil
}
