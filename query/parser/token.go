package parser

import "fmt"

type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether offset lies within the span, both ends inclusive.
func (s Span) Contains(offset int) bool {
	return s.Start.Offset <= offset && offset <= s.End.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenLineComment

	// Literals
	TokenIdent
	TokenNumber
	TokenString
	TokenTrue
	TokenFalse
	TokenNull
	TokenUndefined

	// Keywords
	TokenAnd
	TokenOr
	TokenNot
	TokenNo
	TokenIn

	// References
	TokenDollar
	TokenHash

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenDot
	TokenDotDot

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenEQ
	TokenNE
	TokenMatch
	TokenLT
	TokenLE
	TokenGT
	TokenGE
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:         "EOF",
	TokenError:       "Error",
	TokenWhitespace:  "Whitespace",
	TokenLineComment: "LineComment",
	TokenIdent:       "Identifier",
	TokenNumber:      "Number",
	TokenString:      "String",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenNull:        "null",
	TokenUndefined:   "undefined",
	TokenAnd:         "and",
	TokenOr:          "or",
	TokenNot:         "not",
	TokenNo:          "no",
	TokenIn:          "in",
	TokenDollar:      "$",
	TokenHash:        "#",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenComma:       ",",
	TokenColon:       ":",
	TokenDot:         ".",
	TokenDotDot:      "..",
	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenStar:        "*",
	TokenSlash:       "/",
	TokenPercent:     "%",
	TokenEQ:          "=",
	TokenNE:          "!=",
	TokenMatch:       "~=",
	TokenLT:          "<",
	TokenLE:          "<=",
	TokenGT:          ">",
	TokenGE:          ">=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether the parser skips tokens of this kind.
func (k TokenKind) IsTrivia() bool {
	return k == TokenWhitespace || k == TokenLineComment
}

// IsWord reports whether the kind is spelled as a keyword.
func (k TokenKind) IsWord() bool {
	switch k {
	case TokenAnd, TokenOr, TokenNot, TokenNo, TokenIn,
		TokenTrue, TokenFalse, TokenNull, TokenUndefined:
		return true
	}
	return false
}

// IsOperator reports whether the kind is a unary or binary operator symbol or keyword.
func (k TokenKind) IsOperator() bool {
	switch k {
	case TokenAnd, TokenOr, TokenNot, TokenNo, TokenIn,
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenEQ, TokenNE, TokenMatch, TokenLT, TokenLE, TokenGT, TokenGE:
		return true
	}
	return false
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

func (t Token) Start() int { return t.Span.Start.Offset }
func (t Token) End() int   { return t.Span.End.Offset }

var keywords = map[string]TokenKind{
	"and":       TokenAnd,
	"or":        TokenOr,
	"not":       TokenNot,
	"no":        TokenNo,
	"in":        TokenIn,
	"true":      TokenTrue,
	"false":     TokenFalse,
	"null":      TokenNull,
	"undefined": TokenUndefined,
	"$":         TokenDollar,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}
