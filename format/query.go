package format

import (
	"bytes"
	"io"
	"strings"

	"github.com/dhamidi/trail/query/parser"
)

// QueryPrettyPrinter writes a query in canonical spelling: single spaces
// around binary operators, `, ` between list items, no redundant leading
// stops. Line comments of the source are written on their own lines
// before the expression.
type QueryPrettyPrinter struct {
	w   io.Writer
	buf strings.Builder
}

func NewQueryPrettyPrinter(w io.Writer) *QueryPrettyPrinter {
	return &QueryPrettyPrinter{w: w}
}

func (p *QueryPrettyPrinter) Print(node *parser.Node, comments []parser.Token) error {
	p.buf.Reset()
	for _, comment := range comments {
		p.buf.WriteString(strings.TrimRight(comment.Literal, " \t\r"))
		p.buf.WriteByte('\n')
	}
	p.printNode(node)
	p.buf.WriteByte('\n')
	_, err := io.WriteString(p.w, p.buf.String())
	return err
}

// PrettyPrintQuery parses source strictly and returns its canonical form.
func PrettyPrintQuery(source []byte) ([]byte, error) {
	tokens := parser.Tokenize(string(source))
	root, err := parser.NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}

	var comments []parser.Token
	for _, tok := range tokens {
		if tok.Kind == parser.TokenLineComment {
			comments = append(comments, tok)
		}
	}

	var out bytes.Buffer
	if err := NewQueryPrettyPrinter(&out).Print(root, comments); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (p *QueryPrettyPrinter) write(s string) {
	p.buf.WriteString(s)
}

func isImplicit(n *parser.Node) bool {
	return n.Kind == parser.KindCurrent && n.Implicit
}

func (p *QueryPrettyPrinter) printNode(n *parser.Node) {
	switch n.Kind {
	case parser.KindLiteral:
		p.write(n.TokenLiteral())
	case parser.KindCurrent:
		// The current value has no spelling of its own.
	case parser.KindContext:
		p.write("#")
	case parser.KindRoot:
		p.write("$")
	case parser.KindProperty:
		p.printProperty(n)
	case parser.KindFilter:
		p.printBase(n.Children[0])
		if isImplicit(n.Children[0]) {
			p.write(".")
		}
		p.write("[")
		p.printNode(n.Children[1])
		p.write("]")
	case parser.KindMap:
		p.printBase(n.Children[0])
		p.write(".(")
		p.printNode(n.Children[1])
		p.write(")")
	case parser.KindRecursive:
		p.printBase(n.Children[0])
		p.write("..")
		p.printStep(n.Children[1])
	case parser.KindMethodCall:
		p.printMethodCall(n)
	case parser.KindObject:
		p.write("{")
		p.printList(n.Children, p.printObjectEntry)
		p.write("}")
	case parser.KindArray:
		p.write("[")
		p.printList(n.Children, p.printNode)
		p.write("]")
	case parser.KindUnary:
		if n.Op == parser.TokenNot {
			p.write("not ")
		} else {
			p.write(n.Op.String())
		}
		p.printNode(n.Children[0])
	case parser.KindBinary, parser.KindLogical:
		p.printNode(n.Children[0])
		p.write(" " + n.Op.String() + " ")
		p.printNode(n.Children[1])
	case parser.KindIn:
		p.printNode(n.Children[0])
		if n.Negated {
			p.write(" not in ")
		} else {
			p.write(" in ")
		}
		p.printNode(n.Children[1])
	case parser.KindParen:
		p.write("(")
		p.printNode(n.Children[0])
		p.write(")")
	}
}

// printBase writes the operand of a postfix operation. An implicit
// current value prints as nothing.
func (p *QueryPrettyPrinter) printBase(n *parser.Node) {
	if !isImplicit(n) {
		p.printNode(n)
	}
}

func (p *QueryPrettyPrinter) printProperty(n *parser.Node) {
	base := n.Children[0]
	if !isImplicit(base) {
		p.printNode(base)
		p.write(".")
	}
	p.write(n.Name)
}

func (p *QueryPrettyPrinter) printMethodCall(n *parser.Node) {
	p.printProperty(n)
	p.write("(")
	p.printList(n.Children[1:], p.printNode)
	p.write(")")
}

// printStep writes the step of a recursive descent. A name applied to
// the current value is written bare, anything else in parentheses.
func (p *QueryPrettyPrinter) printStep(n *parser.Node) {
	if (n.Kind == parser.KindProperty || n.Kind == parser.KindMethodCall) && isImplicit(n.Children[0]) {
		p.printNode(n)
		return
	}
	p.write("(")
	p.printNode(n)
	p.write(")")
}

func (p *QueryPrettyPrinter) printObjectEntry(n *parser.Node) {
	switch {
	case n.Computed:
		p.write("[")
		p.printNode(n.Children[0])
		p.write("]: ")
		p.printNode(n.Children[1])
	case n.Token != nil && n.Token.Kind == parser.TokenString:
		p.write(n.Token.Literal + ": ")
		p.printNode(n.Children[0])
	case isShorthand(n):
		p.write(n.Name)
	default:
		p.write(n.Name + ": ")
		p.printNode(n.Children[0])
	}
}

func isShorthand(n *parser.Node) bool {
	value := n.Child(0)
	return value != nil && value.Kind == parser.KindProperty && value.Name == n.Name && isImplicit(value.Children[0])
}

func (p *QueryPrettyPrinter) printList(items []*parser.Node, item func(*parser.Node)) {
	for i, n := range items {
		if i > 0 {
			p.write(", ")
		}
		item(n)
	}
}
