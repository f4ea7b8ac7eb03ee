// Package query compiles query source text once and evaluates it against
// any number of (data, context) pairs.
//
//	q, err := query.Compile("#..deps.filename", query.WithMethods(methods.Builtins()))
//	if err != nil {
//		return err
//	}
//	result, err := q.Evaluate(data, context)
//
// A CompiledQuery is immutable; Evaluate and Suggest may be called from
// several goroutines at once.
package query

import (
	"errors"

	"github.com/dhamidi/trail/query/eval"
	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/suggest"
)

// ErrSuggestDisabled is returned by Suggest on a query compiled without
// WithSuggest.
var ErrSuggestDisabled = errors.New("query was compiled without suggestions")

type options struct {
	suggest bool
	methods methods.Registry
	matcher eval.Matcher
}

type Option func(*options)

// WithSuggest compiles in recovery mode so that Suggest can be used. The
// query then compiles even when it is incomplete; Err reports what was
// repaired.
func WithSuggest() Option {
	return func(o *options) {
		o.suggest = true
	}
}

// WithMethods supplies the methods callable from the query.
func WithMethods(registry methods.Registry) Option {
	return func(o *options) {
		o.methods = registry
	}
}

// WithMatcher replaces the regular expression matcher used by `~=`.
func WithMatcher(m eval.Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

type CompiledQuery struct {
	source    string
	root      *parser.Node
	slots     []parser.Slot
	err       error
	evaluator *eval.Evaluator
	suggester *suggest.Engine
}

// Compile parses source. Without WithSuggest an invalid query fails with a
// *parser.SyntaxError.
func Compile(source string, opts ...Option) (*CompiledQuery, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var parseOpts []parser.Option
	if o.suggest {
		parseOpts = append(parseOpts, parser.WithRecovery())
	}
	p := parser.NewParser(parser.Tokenize(source), parseOpts...)
	root, err := p.Parse()
	if err != nil {
		return nil, err
	}

	evalOpts := []eval.Option{eval.WithMethods(o.methods)}
	if o.matcher != nil {
		evalOpts = append(evalOpts, eval.WithMatcher(o.matcher))
	}
	q := &CompiledQuery{
		source:    source,
		root:      root,
		err:       p.Err(),
		evaluator: eval.New(evalOpts...),
	}
	if o.suggest {
		q.slots = p.Slots()
		suggestOpts := []suggest.Option{suggest.WithMethods(o.methods)}
		if o.matcher != nil {
			suggestOpts = append(suggestOpts, suggest.WithMatcher(o.matcher))
		}
		q.suggester = suggest.New(suggestOpts...)
	}
	return q, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string, opts ...Option) *CompiledQuery {
	q, err := Compile(source, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *CompiledQuery) Source() string {
	return q.source
}

func (q *CompiledQuery) Root() *parser.Node {
	return q.root
}

// Slots returns the completion slots of a query compiled with WithSuggest.
func (q *CompiledQuery) Slots() []parser.Slot {
	return q.slots
}

// Err returns the syntax error repaired while compiling with WithSuggest.
func (q *CompiledQuery) Err() error {
	return q.err
}

// Evaluate runs the query with `$` bound to data. The current value and
// `#` start at context, or at data when context is nil or undefined.
func (q *CompiledQuery) Evaluate(data, context any) (any, error) {
	return q.evaluator.Evaluate(q.root, eval.NewFrame(data, context))
}

// Suggest returns the completions at offset, or nil when there are none.
func (q *CompiledQuery) Suggest(data, context any, offset int) (*suggest.Suggestion, error) {
	if q.suggester == nil {
		return nil, ErrSuggestDisabled
	}
	return q.suggester.SuggestParsed(q.root, q.slots, data, context, offset), nil
}
