package format

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/dhamidi/trail/query/parser"
)

// ParseResult is what `trail parse` prints: the tree, the completion
// slots of a recovering parse and the first syntax error.
type ParseResult struct {
	Root  *parser.Node
	Slots []parser.Slot
	Err   error
}

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(result ParseResult) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText(result ParseResult) ([]byte, error) {
	out := astJSONResult{Slots: result.Slots}
	if result.Root != nil {
		out.Root = nodeToJSON(result.Root)
	}
	if result.Err != nil {
		out.Error = errorToJSON(result.Err)
	}
	return json.MarshalIndent(out, "", "  ")
}

type astJSONResult struct {
	Root  *astJSONNode  `json:"root,omitempty"`
	Slots []parser.Slot `json:"slots,omitempty"`
	Error *astJSONError `json:"error,omitempty"`
}

type astJSONNode struct {
	Kind     string         `json:"kind"`
	Span     *astJSONSpan   `json:"span,omitempty"`
	Token    string         `json:"token,omitempty"`
	Name     string         `json:"name,omitempty"`
	Op       string         `json:"op,omitempty"`
	Value    any            `json:"value,omitempty"`
	Flags    []string       `json:"flags,omitempty"`
	Children []*astJSONNode `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start astJSONPosition `json:"start"`
	End   astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type astJSONError struct {
	Message  string           `json:"message"`
	Position *astJSONPosition `json:"position,omitempty"`
	Expected []string         `json:"expected,omitempty"`
	Got      string           `json:"got,omitempty"`
}

func position(p parser.Position) astJSONPosition {
	return astJSONPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func nodeToJSON(n *parser.Node) *astJSONNode {
	jn := &astJSONNode{
		Kind: n.Kind.String(),
		Name: n.Name,
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		jn.Span = &astJSONSpan{
			Start: position(n.Span.Start),
			End:   position(n.Span.End),
		}
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}

	switch n.Kind {
	case parser.KindBinary, parser.KindUnary, parser.KindLogical:
		jn.Op = n.Op.String()
	case parser.KindLiteral:
		jn.Value = n.Value
	}

	flags := []struct {
		name string
		set  bool
	}{
		{"computed", n.Computed},
		{"implicit", n.Implicit},
		{"missing", n.Missing},
		{"negated", n.Negated},
	}
	for _, flag := range flags {
		if flag.set {
			jn.Flags = append(jn.Flags, flag.name)
		}
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*astJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child)
		}
	}

	return jn
}

func errorToJSON(err error) *astJSONError {
	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return &astJSONError{Message: err.Error()}
	}
	pos := position(syntaxErr.Pos)
	je := &astJSONError{
		Message:  syntaxErr.Error(),
		Position: &pos,
		Got:      syntaxErr.Got.Literal,
	}
	for _, exp := range syntaxErr.Expected {
		je.Expected = append(je.Expected, exp.String())
	}
	return je
}
