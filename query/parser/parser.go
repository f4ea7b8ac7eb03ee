package parser

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dhamidi/trail/query/value"
)

type Option func(*Parser)

// WithRecovery makes the parser accept incomplete input. Missing operands,
// names and closing brackets are replaced by placeholder nodes (marked
// Missing) and Parse never fails. Completion slots are recorded for every
// identifier and placeholder.
func WithRecovery() Option {
	return func(p *Parser) {
		p.recover = true
	}
}

type Parser struct {
	recover bool
	tokens  []Token
	// gapEnds[i] is the end offset of the whitespace run directly following
	// tokens[i], or the token's own end when no whitespace follows.
	gapEnds []int
	leadGap int
	pos     int
	role    SlotKind
	slots   []Slot
	err     *SyntaxError
}

// Parse parses a complete query. It is a shorthand for
// NewParser(Tokenize(source), opts...).Parse().
func Parse(source string, opts ...Option) (*Node, error) {
	return NewParser(Tokenize(source), opts...).Parse()
}

// NewParser prepares a parser over the output of Tokenize. Trivia tokens
// are skipped but remembered as gaps between significant tokens.
func NewParser(tokens []Token, opts ...Option) *Parser {
	p := &Parser{role: SlotPath}
	for _, opt := range opts {
		opt(p)
	}

	extending := true
	p.leadGap = 0
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenWhitespace:
			if extending {
				if len(p.tokens) == 0 {
					p.leadGap = tok.End()
				} else {
					p.gapEnds[len(p.gapEnds)-1] = tok.End()
				}
			}
		case TokenLineComment:
			extending = false
		default:
			p.tokens = append(p.tokens, tok)
			p.gapEnds = append(p.gapEnds, tok.End())
			extending = true
		}
		if tok.Kind == TokenEOF {
			break
		}
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Kind != TokenEOF {
		var end Position
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Span.End
		} else {
			end = Position{Line: 1, Column: 1}
		}
		p.tokens = append(p.tokens, Token{Kind: TokenEOF, Span: Span{Start: end, End: end}})
		p.gapEnds = append(p.gapEnds, end.Offset)
	}
	return p
}

// Parse returns the root expression. Without WithRecovery the first
// syntax error is returned as a *SyntaxError; with it, the tree is always
// returned and Err reports what was repaired.
func (p *Parser) Parse() (*Node, error) {
	p.pos = 0
	p.slots = nil
	p.err = nil
	p.role = SlotPath

	var root *Node
	if p.check(TokenEOF) && !p.recover {
		root = p.implicitCurrent(p.peek().Span.Start)
	} else {
		root = p.parseExpression()
	}
	if !p.check(TokenEOF) {
		p.errorf([]TokenKind{TokenEOF}, "unexpected %s after expression", p.peek().Kind)
	}

	sort.SliceStable(p.slots, func(i, j int) bool {
		return p.slots[i].From < p.slots[j].From
	})

	if p.err != nil && !p.recover {
		return nil, p.err
	}
	return root, nil
}

// Slots returns the completion slots recorded by the last Parse, ordered
// by start offset.
func (p *Parser) Slots() []Slot {
	return p.slots
}

// Err returns the first syntax error of the last Parse, if any.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind TokenKind) *Token {
	if p.check(kind) {
		tok := p.advance()
		return &tok
	}
	p.errorf([]TokenKind{kind}, "")
	return nil
}

func (p *Parser) errorf(expected []TokenKind, format string, args ...any) {
	if p.err != nil {
		return
	}
	tok := p.peek()
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	p.err = &SyntaxError{
		Pos:      tok.Span.Start,
		Expected: expected,
		Got:      tok,
		Message:  msg,
	}
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

// wrapNode starts a node whose first child is an already parsed operand.
func (p *Parser) wrapNode(kind NodeKind, first *Node) *Node {
	node := &Node{
		Kind: kind,
		Span: Span{Start: first.Span.Start},
	}
	node.AddChild(first)
	return node
}

func (p *Parser) finishNode(n *Node) *Node {
	n.Span.End = n.Span.Start
	if p.pos > 0 {
		if end := p.tokens[p.pos-1].Span.End; end.Offset >= n.Span.Start.Offset {
			n.Span.End = end
		}
	}
	for _, child := range n.Children {
		if child.Span.End.Offset > n.Span.End.Offset {
			n.Span.End = child.Span.End
		}
	}
	return n
}

func (p *Parser) implicitCurrent(at Position) *Node {
	return &Node{
		Kind:     KindCurrent,
		Span:     Span{Start: at, End: at},
		Implicit: true,
	}
}

func (p *Parser) addSlot(from, to int, kind SlotKind, current string, node *Node) {
	p.slots = append(p.slots, Slot{
		From:    from,
		To:      to,
		Kind:    kind,
		Current: current,
		Node:    node,
	})
}

func (p *Parser) withRole(role SlotKind, parse func() *Node) *Node {
	saved := p.role
	p.role = role
	defer func() { p.role = saved }()
	return parse()
}

// closeGroup consumes the closing bracket of a group. A group left open at
// end of input is closed implicitly; anything else before the closer is
// skipped up to the matching bracket.
func (p *Parser) closeGroup(closer TokenKind) {
	if p.check(closer) {
		p.advance()
		return
	}
	p.errorf([]TokenKind{closer}, "")
	p.recoverTo(closer)
}

func (p *Parser) recoverTo(closer TokenKind) {
	depth := 0
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			if depth == 0 {
				if p.check(closer) {
					p.advance()
				}
				return
			}
			depth--
		}
		p.advance()
	}
}

func (p *Parser) parseExpression() *Node {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() *Node {
	left := p.parseAndExpr()

	for p.check(TokenOr) {
		node := p.wrapNode(KindLogical, left)
		tok := p.advance()
		node.Op = tok.Kind
		node.Token = &tok
		node.AddChild(p.parseAndExpr())
		left = p.finishNode(node)
	}

	return left
}

func (p *Parser) parseAndExpr() *Node {
	left := p.parseComparisonExpr()

	for p.check(TokenAnd) {
		node := p.wrapNode(KindLogical, left)
		tok := p.advance()
		node.Op = tok.Kind
		node.Token = &tok
		node.AddChild(p.parseComparisonExpr())
		left = p.finishNode(node)
	}

	return left
}

func (p *Parser) parseComparisonExpr() *Node {
	left := p.parseAdditiveExpr()

	for {
		switch {
		case p.match(TokenEQ, TokenNE, TokenMatch, TokenLT, TokenLE, TokenGT, TokenGE):
			node := p.wrapNode(KindBinary, left)
			tok := p.advance()
			node.Op = tok.Kind
			node.Token = &tok
			node.AddChild(p.parseAdditiveExpr())
			left = p.finishNode(node)
		case p.check(TokenIn):
			node := p.wrapNode(KindIn, left)
			tok := p.advance()
			node.Token = &tok
			node.AddChild(p.parseAdditiveExpr())
			left = p.finishNode(node)
		case p.check(TokenNot) && p.peekN(1).Kind == TokenIn:
			node := p.wrapNode(KindIn, left)
			tok := p.advance()
			p.advance()
			node.Token = &tok
			node.Negated = true
			node.AddChild(p.parseAdditiveExpr())
			left = p.finishNode(node)
		default:
			return left
		}
	}
}

func (p *Parser) parseAdditiveExpr() *Node {
	left := p.parseMultiplicativeExpr()

	for p.match(TokenPlus, TokenMinus) {
		node := p.wrapNode(KindBinary, left)
		tok := p.advance()
		node.Op = tok.Kind
		node.Token = &tok
		node.AddChild(p.parseMultiplicativeExpr())
		left = p.finishNode(node)
	}

	return left
}

func (p *Parser) parseMultiplicativeExpr() *Node {
	left := p.parseUnaryExpr()

	for p.match(TokenStar, TokenSlash, TokenPercent) {
		node := p.wrapNode(KindBinary, left)
		tok := p.advance()
		node.Op = tok.Kind
		node.Token = &tok
		node.AddChild(p.parseUnaryExpr())
		left = p.finishNode(node)
	}

	return left
}

func (p *Parser) parseUnaryExpr() *Node {
	if p.match(TokenNot, TokenNo, TokenMinus) {
		node := p.startNode(KindUnary)
		tok := p.advance()
		node.Token = &tok
		node.Op = tok.Kind
		if tok.Kind == TokenNo {
			node.Op = TokenNot
		}
		node.AddChild(p.parseUnaryExpr())
		return p.finishNode(node)
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() *Node {
	expr := p.parsePrimaryExpr()
	return p.parsePostfixSuffix(expr)
}

func (p *Parser) parsePostfixSuffix(expr *Node) *Node {
	for {
		switch p.peek().Kind {
		case TokenDot:
			dot := p.advance()
			switch p.peek().Kind {
			case TokenIdent:
				expr = p.parseName(expr, SlotPath)
			case TokenLBracket:
				expr = p.parseFilter(expr)
			case TokenLParen:
				expr = p.parseMap(expr)
			default:
				expr = p.missingName(expr, dot)
			}
		case TokenDotDot:
			expr = p.parseRecursive(expr)
		case TokenLBracket:
			expr = p.parseFilter(expr)
		case TokenLParen:
			expr = p.parseMap(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimaryExpr() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenNumber, TokenString, TokenTrue, TokenFalse, TokenNull, TokenUndefined:
		return p.parseLiteral()
	case TokenHash:
		p.advance()
		return &Node{Kind: KindContext, Span: tok.Span, Token: &tok}
	case TokenDollar:
		p.advance()
		return &Node{Kind: KindRoot, Span: tok.Span, Token: &tok}
	case TokenIdent:
		return p.parseName(p.implicitCurrent(tok.Span.Start), p.role)
	case TokenLParen:
		return p.parseParenExpr()
	case TokenLBracket:
		return p.parseArrayExpr()
	case TokenLBrace:
		return p.parseObjectExpr()
	case TokenDot, TokenDotDot:
		// A chain starting with a stop applies to the current value.
		return p.implicitCurrent(tok.Span.Start)
	}
	return p.missingOperand()
}

func (p *Parser) parseLiteral() *Node {
	node := p.startNode(KindLiteral)
	tok := p.advance()
	node.Token = &tok
	switch tok.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf(nil, "invalid number %s", tok.Literal)
		}
		node.Value = f
	case TokenString:
		s, err := Unquote(tok.Literal)
		if err != nil {
			p.errorf(nil, "invalid string literal: %v", err)
		}
		node.Value = s
	case TokenTrue:
		node.Value = true
	case TokenFalse:
		node.Value = false
	case TokenNull:
		node.Value = nil
	case TokenUndefined:
		node.Value = value.Undefined
	}
	return p.finishNode(node)
}

// parseName parses an identifier applied to base: a method call when it is
// followed by an argument list, a property access otherwise.
func (p *Parser) parseName(base *Node, kind SlotKind) *Node {
	tok := p.advance()
	if p.check(TokenLParen) {
		node := p.wrapNode(KindMethodCall, base)
		node.Name = tok.Literal
		node.Token = &tok
		p.addSlot(tok.Start(), tok.End(), SlotMethod, tok.Literal, node)
		p.advance()
		p.parseList(node, TokenRParen, SlotArgument, p.parseExpression)
		p.closeGroup(TokenRParen)
		return p.finishNode(node)
	}

	node := p.wrapNode(KindProperty, base)
	node.Name = tok.Literal
	node.Token = &tok
	p.addSlot(tok.Start(), tok.End(), kind, tok.Literal, node)
	return p.finishNode(node)
}

func (p *Parser) parseFilter(base *Node) *Node {
	node := p.wrapNode(KindFilter, base)
	p.advance()
	node.AddChild(p.withRole(SlotPath, p.parseExpression))
	p.closeGroup(TokenRBracket)
	return p.finishNode(node)
}

func (p *Parser) parseMap(base *Node) *Node {
	node := p.wrapNode(KindMap, base)
	p.advance()
	node.AddChild(p.withRole(SlotArgument, p.parseExpression))
	// A map has a single body. While recovering, bodies after a comma
	// are kept as extra children so the positions after it complete.
	if p.recover && p.check(TokenComma) {
		p.errorf([]TokenKind{TokenRParen}, "")
		for p.check(TokenComma) {
			p.advance()
			node.AddChild(p.withRole(SlotArgument, p.parseExpression))
		}
	}
	p.closeGroup(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseRecursive(base *Node) *Node {
	node := p.wrapNode(KindRecursive, base)
	dots := p.advance()
	switch p.peek().Kind {
	case TokenIdent:
		node.AddChild(p.parseName(p.implicitCurrent(p.peek().Span.Start), SlotPath))
	case TokenLParen:
		p.advance()
		node.AddChild(p.withRole(SlotPath, p.parseExpression))
		p.closeGroup(TokenRParen)
	default:
		node.AddChild(p.missingName(p.implicitCurrent(dots.Span.End), dots))
	}
	return p.finishNode(node)
}

func (p *Parser) parseParenExpr() *Node {
	node := p.startNode(KindParen)
	p.advance()
	node.AddChild(p.withRole(SlotPath, p.parseExpression))
	p.closeGroup(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseArrayExpr() *Node {
	node := p.startNode(KindArray)
	p.advance()
	p.parseList(node, TokenRBracket, SlotArrayElement, p.parseExpression)
	p.closeGroup(TokenRBracket)
	return p.finishNode(node)
}

func (p *Parser) parseObjectExpr() *Node {
	node := p.startNode(KindObject)
	p.advance()
	p.parseList(node, TokenRBrace, SlotObjectKey, p.parseObjectEntry)
	p.closeGroup(TokenRBrace)
	return p.finishNode(node)
}

// parseList parses comma separated items up to closer. An empty list is
// valid input; while recovering it still gets a placeholder item so the
// position inside the brackets can be completed.
func (p *Parser) parseList(node *Node, closer TokenKind, role SlotKind, item func() *Node) {
	if p.check(closer) && !p.recover {
		return
	}
	for {
		node.AddChild(p.withRole(role, item))
		if !p.check(TokenComma) {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseObjectEntry() *Node {
	tok := p.peek()
	entry := p.startNode(KindObjectEntry)

	switch {
	case tok.Kind == TokenIdent && p.peekN(1).Kind == TokenColon:
		p.advance()
		p.advance()
		entry.Name = tok.Literal
		entry.Token = &tok
		p.addSlot(tok.Start(), tok.End(), SlotObjectKey, tok.Literal, entry)
		entry.AddChild(p.withRole(SlotArgument, p.parseExpression))
	case tok.Kind == TokenString && p.peekN(1).Kind == TokenColon:
		key := p.parseLiteral()
		p.advance()
		entry.Name, _ = key.Value.(string)
		entry.Token = &tok
		entry.AddChild(p.withRole(SlotArgument, p.parseExpression))
	case tok.Kind == TokenLBracket:
		p.advance()
		entry.Computed = true
		entry.AddChild(p.withRole(SlotPath, p.parseExpression))
		p.closeGroup(TokenRBracket)
		p.expect(TokenColon)
		entry.AddChild(p.withRole(SlotArgument, p.parseExpression))
	case tok.Kind == TokenIdent:
		entry.Name = tok.Literal
		entry.Token = &tok
		entry.AddChild(p.parseName(p.implicitCurrent(tok.Span.Start), SlotObjectKey))
	default:
		entry.Missing = true
		placeholder := p.missingOperand()
		entry.Span = placeholder.Span
		entry.AddChild(placeholder)
		return entry
	}
	return p.finishNode(entry)
}

// missingOperand builds the placeholder for an expression that is absent
// at the current token. A slot is recorded when the cursor could sensibly
// start typing the operand there: right after an opening bracket, comma or
// colon, at the start of input, or after an operator followed by
// whitespace. After a keyword operator the slot starts one past the
// keyword so that the keyword itself is not completed.
func (p *Parser) missingOperand() *Node {
	p.errorf(nil, "expected expression")

	var at Position
	var from, to int
	ok := false
	if p.pos == 0 {
		at = Position{Offset: 0, Line: 1, Column: 1}
		from, to, ok = 0, p.leadGap, true
	} else {
		prev := p.tokens[p.pos-1]
		gap := p.gapEnds[p.pos-1]
		at = prev.Span.End
		switch {
		case prev.Kind == TokenLParen, prev.Kind == TokenLBracket, prev.Kind == TokenLBrace,
			prev.Kind == TokenComma, prev.Kind == TokenColon:
			from, to, ok = prev.End(), gap, true
		case prev.Kind.IsOperator() && prev.Kind.IsWord():
			from, to, ok = prev.End()+1, gap, gap > prev.End()
		case prev.Kind.IsOperator():
			from, to, ok = prev.End(), gap, gap > prev.End()
		}
	}

	node := &Node{
		Kind:    KindProperty,
		Span:    Span{Start: at, End: at},
		Missing: true,
	}
	node.AddChild(p.implicitCurrent(at))
	if ok {
		p.addSlot(from, to, p.role, "", node)
	}
	return node
}

// missingName builds the placeholder for a property name absent after a
// `.` or `..` stop. The slot covers the whitespace following the stop.
func (p *Parser) missingName(base *Node, stop Token) *Node {
	p.errorf([]TokenKind{TokenIdent}, "")

	node := &Node{
		Kind:    KindProperty,
		Span:    Span{Start: base.Span.Start, End: stop.Span.End},
		Missing: true,
	}
	node.AddChild(base)
	p.addSlot(stop.End(), p.gapEnds[p.pos-1], SlotPath, "", node)
	return node
}
