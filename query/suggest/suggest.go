// Package suggest computes completions for a possibly incomplete query at
// a cursor offset.
//
// The query is parsed with error recovery, which records a slot for every
// identifier and for every place where an operand or property name is
// missing. The slot under the cursor decides the replacement span; the
// query is then evaluated against the data while watching the slot's node
// to learn which values the slot would extend, and the member names of
// those values are the candidates.
package suggest

import (
	"github.com/dhamidi/trail/query/eval"
	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/value"
)

const (
	PropertyPrefix = "property:"
	MethodPrefix   = "method:"
)

// Suggestion describes the completions at a cursor. Replacing
// source[From:To] with a candidate's name (without its kind prefix)
// completes the query.
type Suggestion struct {
	ContextKind string   `json:"contextKind"`
	Current     string   `json:"current"`
	Candidates  []string `json:"candidates"`
	From        int      `json:"from"`
	To          int      `json:"to"`
}

type Option func(*Engine)

func WithMethods(registry methods.Registry) Option {
	return func(e *Engine) {
		e.methods = registry
	}
}

func WithMatcher(m eval.Matcher) Option {
	return func(e *Engine) {
		e.matcher = m
	}
}

type Engine struct {
	methods methods.Registry
	matcher eval.Matcher
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.methods == nil {
		e.methods = methods.Registry{}
	}
	return e
}

// Suggest parses source with recovery and returns the suggestion at
// offset, or nil when the cursor is not in a completable position.
func (e *Engine) Suggest(source string, data, context any, offset int) *Suggestion {
	p := parser.NewParser(parser.Tokenize(source), parser.WithRecovery())
	root, _ := p.Parse()
	return e.SuggestParsed(root, p.Slots(), data, context, offset)
}

// SuggestParsed works on the result of a recovering parse.
func (e *Engine) SuggestParsed(root *parser.Node, slots []parser.Slot, data, context any, offset int) *Suggestion {
	slot, ok := parser.SlotAt(slots, offset)
	if !ok {
		return nil
	}

	s := &Suggestion{
		ContextKind: slot.Kind.String(),
		Current:     slot.Current,
		From:        offset,
		To:          offset,
	}
	if slot.Current != "" {
		s.From, s.To = slot.From, slot.To
	}

	if slot.Kind == parser.SlotMethod {
		s.Candidates = e.methodCandidates()
		return s
	}
	s.Candidates = propertyCandidates(e.bases(root, slot.Node, data, context))
	return s
}

// bases evaluates root and returns every value the watched node was
// applied to. Evaluation errors are ignored: whatever was observed before
// the error still counts.
func (e *Engine) bases(root, watched *parser.Node, data, context any) []any {
	var seen []any
	tracker := func(node *parser.Node, base any) {
		if node == watched {
			seen = append(seen, base)
		}
	}

	opts := []eval.Option{eval.WithMethods(e.methods), eval.WithTracker(tracker)}
	if e.matcher != nil {
		opts = append(opts, eval.WithMatcher(e.matcher))
	}
	_, _ = eval.New(opts...).Evaluate(root, eval.NewFrame(data, context))
	return seen
}

func (e *Engine) methodCandidates() []string {
	names := e.methods.Names()
	candidates := make([]string, len(names))
	for i, name := range names {
		candidates[i] = MethodPrefix + name
	}
	return candidates
}

// propertyCandidates lists the member names of values, looking one level
// into arrays, without duplicates and in first-seen order.
func propertyCandidates(values []any) []string {
	candidates := []string{}
	seen := make(map[string]bool)
	add := func(v any) {
		for _, key := range value.Keys(v) {
			if !seen[key] {
				seen[key] = true
				candidates = append(candidates, PropertyPrefix+key)
			}
		}
	}
	for _, v := range values {
		if list, ok := value.AsList(v); ok {
			for _, item := range list {
				add(item)
			}
			continue
		}
		add(v)
	}
	return candidates
}
