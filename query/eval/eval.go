// Package eval interprets query syntax trees against JSON-like data.
//
// Evaluation never fails on mismatched operand types: missing members
// yield value.Undefined and arithmetic coerces operands to numbers. The
// only errors are calls to unknown methods and errors returned by methods.
package eval

import (
	"fmt"
	"math"

	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/value"
)

// Frame is the state a node is evaluated in. Value is the current value
// that implicit bases and postfix operations start from, Context is bound
// to `#` and Root to `$`.
type Frame struct {
	Value   any
	Context any
	Root    any
}

// NewFrame returns the top-level frame for a query. The focus starts on
// context, or on data when no context is given; `$` is always data.
func NewFrame(data, context any) Frame {
	focus := context
	if focus == nil || value.IsUndefined(focus) {
		focus = data
	}
	return Frame{Value: focus, Context: focus, Root: data}
}

// with returns a frame focused on v. Filters, maps and recursive steps
// rebind both the current value and `#`.
func (f Frame) with(v any) Frame {
	f.Value = v
	f.Context = v
	return f
}

// Tracker observes the value each Property node extends and the current
// value of each keyed ObjectEntry. It is used to find completion
// candidates and is nil during normal evaluation.
type Tracker func(node *parser.Node, base any)

// UnknownMethodError reports a call of a method missing from the registry.
type UnknownMethodError struct {
	Name string
	Pos  parser.Position
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q at %s", e.Name, e.Pos)
}

type Option func(*Evaluator)

func WithMethods(registry methods.Registry) Option {
	return func(e *Evaluator) {
		e.methods = registry
	}
}

func WithMatcher(m Matcher) Option {
	return func(e *Evaluator) {
		e.matcher = m
	}
}

func WithTracker(t Tracker) Option {
	return func(e *Evaluator) {
		e.tracker = t
	}
}

// Evaluator holds the collaborators of an evaluation. It has no mutable
// state and may be shared between goroutines as long as its tracker is
// safe for concurrent use.
type Evaluator struct {
	methods methods.Registry
	matcher Matcher
	tracker Tracker
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		matcher: NewRegexpMatcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.methods == nil {
		e.methods = methods.Registry{}
	}
	return e
}

// Evaluate computes the value of node in frame.
func (e *Evaluator) Evaluate(node *parser.Node, frame Frame) (any, error) {
	switch node.Kind {
	case parser.KindLiteral:
		return node.Value, nil
	case parser.KindCurrent:
		return frame.Value, nil
	case parser.KindContext:
		return frame.Context, nil
	case parser.KindRoot:
		return frame.Root, nil
	case parser.KindParen:
		return e.Evaluate(node.Children[0], frame)
	case parser.KindProperty:
		return e.evalProperty(node, frame)
	case parser.KindFilter:
		return e.evalFilter(node, frame)
	case parser.KindMap:
		return e.evalMap(node, frame)
	case parser.KindRecursive:
		return e.evalRecursive(node, frame)
	case parser.KindMethodCall:
		return e.evalMethodCall(node, frame)
	case parser.KindObject:
		return e.evalObject(node, frame)
	case parser.KindArray:
		return e.evalArray(node, frame)
	case parser.KindUnary:
		return e.evalUnary(node, frame)
	case parser.KindBinary:
		return e.evalBinary(node, frame)
	case parser.KindLogical:
		return e.evalLogical(node, frame)
	case parser.KindIn:
		return e.evalIn(node, frame)
	}
	return value.Undefined, nil
}

func (e *Evaluator) track(node *parser.Node, base any) {
	if e.tracker != nil {
		e.tracker(node, base)
	}
}

func (e *Evaluator) evalProperty(node *parser.Node, frame Frame) (any, error) {
	base, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	e.track(node, base)
	if node.Missing {
		return value.Undefined, nil
	}
	return mapValues(base, func(item any) (any, error) {
		return value.Get(item, node.Name), nil
	})
}

func (e *Evaluator) evalFilter(node *parser.Node, frame Frame) (any, error) {
	base, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	predicate := node.Children[1]

	list, ok := value.AsList(base)
	if !ok {
		keep, err := e.Evaluate(predicate, frame.with(base))
		if err != nil {
			return nil, err
		}
		if value.Truthy(keep) {
			return base, nil
		}
		return value.Undefined, nil
	}

	result := []any{}
	for _, item := range list {
		keep, err := e.Evaluate(predicate, frame.with(item))
		if err != nil {
			return nil, err
		}
		if value.Truthy(keep) {
			result = append(result, item)
		}
	}
	return result, nil
}

func (e *Evaluator) evalMap(node *parser.Node, frame Frame) (any, error) {
	base, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	body := node.Children[1]
	return mapValues(base, func(item any) (any, error) {
		// Extra bodies only come from a recovering parse; they are
		// evaluated for the tracker and their results are dropped.
		for _, extra := range node.Children[2:] {
			if _, err := e.Evaluate(extra, frame.with(item)); err != nil {
				return nil, err
			}
		}
		return e.Evaluate(body, frame.with(item))
	})
}

// evalRecursive computes the closure of the step relation by breadth-first
// iteration. Every value produced by a step is recorded once by identity,
// and only newly recorded values are stepped from again, so cycles and
// shared nodes terminate. Elements of the base are part of the result only
// when some step reaches them.
func (e *Evaluator) evalRecursive(node *parser.Node, frame Frame) (any, error) {
	base, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	step := node.Children[1]

	visited := value.NewSet()
	frontier := elements(base)
	for len(frontier) > 0 {
		var next []any
		for _, item := range frontier {
			produced, err := e.Evaluate(step, frame.with(item))
			if err != nil {
				return nil, err
			}
			for _, v := range elements(produced) {
				if visited.Add(v) {
					next = append(next, v)
				}
			}
		}
		frontier = next
	}
	return visited.Items(), nil
}

func (e *Evaluator) evalMethodCall(node *parser.Node, frame Frame) (any, error) {
	target, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(node.Children)-1)
	for _, arg := range node.Children[1:] {
		v, err := e.Evaluate(arg, frame)
		if err != nil {
			return nil, err
		}
		if !arg.Missing {
			args = append(args, v)
		}
	}

	method, ok := e.methods.Get(node.Name)
	if !ok {
		pos := node.Span.Start
		if node.Token != nil {
			pos = node.Token.Span.Start
		}
		return nil, &UnknownMethodError{Name: node.Name, Pos: pos}
	}
	call := func(t any) (any, error) {
		result, _, err := e.methods.Call(node.Name, t, args)
		return result, err
	}
	if method.Collection {
		return call(target)
	}
	return mapValues(target, call)
}

func (e *Evaluator) evalObject(node *parser.Node, frame Frame) (any, error) {
	obj := value.NewObject()
	for _, entry := range node.Children {
		if entry.Computed {
			key, err := e.Evaluate(entry.Children[0], frame)
			if err != nil {
				return nil, err
			}
			v, err := e.Evaluate(entry.Children[1], frame)
			if err != nil {
				return nil, err
			}
			obj.Set(value.ToString(key), v)
			continue
		}

		e.track(entry, frame.Value)
		v, err := e.Evaluate(entry.Children[0], frame)
		if err != nil {
			return nil, err
		}
		if entry.Missing {
			continue
		}
		obj.Set(entry.Name, v)
	}
	return obj, nil
}

func (e *Evaluator) evalArray(node *parser.Node, frame Frame) (any, error) {
	result := make([]any, 0, len(node.Children))
	for _, element := range node.Children {
		v, err := e.Evaluate(element, frame)
		if err != nil {
			return nil, err
		}
		if !element.Missing {
			result = append(result, v)
		}
	}
	return result, nil
}

func (e *Evaluator) evalUnary(node *parser.Node, frame Frame) (any, error) {
	operand, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case parser.TokenNot:
		return !value.Truthy(operand), nil
	case parser.TokenMinus:
		return -value.ToNumber(operand), nil
	}
	return value.Undefined, nil
}

func (e *Evaluator) evalLogical(node *parser.Node, frame Frame) (any, error) {
	left, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case parser.TokenAnd:
		if !value.Truthy(left) {
			return left, nil
		}
	case parser.TokenOr:
		if value.Truthy(left) {
			return left, nil
		}
	}
	return e.Evaluate(node.Children[1], frame)
}

func (e *Evaluator) evalIn(node *parser.Node, frame Frame) (any, error) {
	left, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(node.Children[1], frame)
	if err != nil {
		return nil, err
	}
	return contains(right, left) != node.Negated, nil
}

func (e *Evaluator) evalBinary(node *parser.Node, frame Frame) (any, error) {
	left, err := e.Evaluate(node.Children[0], frame)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(node.Children[1], frame)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case parser.TokenPlus:
		return add(left, right), nil
	case parser.TokenMinus:
		return subtract(left, right), nil
	case parser.TokenStar:
		return value.ToNumber(left) * value.ToNumber(right), nil
	case parser.TokenSlash:
		divisor := value.ToNumber(right)
		if divisor == 0 {
			return value.Undefined, nil
		}
		return value.ToNumber(left) / divisor, nil
	case parser.TokenPercent:
		divisor := value.ToNumber(right)
		if divisor == 0 {
			return value.Undefined, nil
		}
		return math.Mod(value.ToNumber(left), divisor), nil
	case parser.TokenEQ:
		return value.Equal(left, right), nil
	case parser.TokenNE:
		return !value.Equal(left, right), nil
	case parser.TokenLT:
		return ordered(left, right) && value.Compare(left, right) < 0, nil
	case parser.TokenLE:
		return ordered(left, right) && value.Compare(left, right) <= 0, nil
	case parser.TokenGT:
		return ordered(left, right) && value.Compare(left, right) > 0, nil
	case parser.TokenGE:
		return ordered(left, right) && value.Compare(left, right) >= 0, nil
	case parser.TokenMatch:
		return e.matcher.Match(left, right), nil
	}
	return value.Undefined, nil
}
