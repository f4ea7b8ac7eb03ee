package parser

import (
	"fmt"
	"strings"
)

type NodeKind int

const (
	KindError NodeKind = iota

	// References
	KindLiteral
	KindCurrent
	KindContext
	KindRoot

	// Postfix chain
	KindProperty
	KindFilter
	KindMap
	KindRecursive
	KindMethodCall

	// Constructors
	KindObject
	KindObjectEntry
	KindArray

	// Operators
	KindBinary
	KindUnary
	KindLogical
	KindIn
	KindParen
)

var nodeKindNames = map[NodeKind]string{
	KindError:       "Error",
	KindLiteral:     "Literal",
	KindCurrent:     "Current",
	KindContext:     "Context",
	KindRoot:        "Root",
	KindProperty:    "Property",
	KindFilter:      "Filter",
	KindMap:         "Map",
	KindRecursive:   "Recursive",
	KindMethodCall:  "MethodCall",
	KindObject:      "Object",
	KindObjectEntry: "ObjectEntry",
	KindArray:       "Array",
	KindBinary:      "Binary",
	KindUnary:       "Unary",
	KindLogical:     "Logical",
	KindIn:          "In",
	KindParen:       "Paren",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is a single AST node. The meaning of Children depends on Kind:
//
//	Property     [base]
//	Filter       [base, predicate]
//	Map          [base, body]
//	Recursive    [base, step]
//	MethodCall   [target, args...]
//	Object       [entries...]
//	ObjectEntry  [value] or, when Computed, [key, value]
//	Array        [elements...]
//	Binary/Logical/In [left, right]
//	Unary/Paren  [operand]
//
// Nodes are never modified once the parser returns them.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token

	// Name is the property, method or object key name.
	Name string
	// Value is the decoded value of a Literal.
	Value any
	// Op is the operator of Binary, Unary and Logical nodes.
	Op TokenKind
	// Negated marks `not in`.
	Negated bool
	// Missing marks a placeholder inserted by error recovery.
	Missing bool
	// Computed marks an object entry whose key is an expression.
	Computed bool
	// Implicit marks a Current node that was not written in the source.
	Implicit bool
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) Start() int { return n.Span.Start.Offset }
func (n *Node) End() int   { return n.Span.End.Offset }

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Walk calls fn for n and its descendants in source order until fn
// returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	var b strings.Builder
	n.writeTo(&b, indent, showPositions)
	return b.String()
}

func (n *Node) writeTo(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if showPositions {
		fmt.Fprintf(b, " [%d-%d]", n.Span.Start.Offset, n.Span.End.Offset)
	}
	switch n.Kind {
	case KindLiteral:
		b.WriteString(" " + n.TokenLiteral())
	case KindProperty, KindMethodCall, KindObjectEntry:
		if n.Name != "" {
			b.WriteString(" " + n.Name)
		}
	case KindBinary, KindUnary, KindLogical:
		b.WriteString(" " + n.Op.String())
	case KindIn:
		if n.Negated {
			b.WriteString(" not in")
		} else {
			b.WriteString(" in")
		}
	}
	if n.Implicit {
		b.WriteString(" (implicit)")
	}
	if n.Missing {
		b.WriteString(" (missing)")
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		child.writeTo(b, indent+1, showPositions)
	}
}
