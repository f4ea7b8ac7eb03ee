// Package methods holds the named functions a query can call with
// `name(args)` or `base.name(args)`.
//
// A Registry is supplied to the evaluator explicitly, so several
// registries can coexist in one process. The evaluator only reads it.
package methods

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MethodFunc receives the call target (the current value or the explicit
// base) and the evaluated arguments.
type MethodFunc func(target any, args []any) (any, error)

// Method is a registry entry. Collection methods receive a list target as
// a whole; other methods are applied to each element of a list target and
// the results are flattened.
type Method struct {
	Fn          MethodFunc
	Arity       string // "0", "1", "0-1", "1+", ...
	Collection  bool
	Description string
}

type Registry map[string]Method

// Names returns the method names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r Registry) Get(name string) (Method, bool) {
	m, ok := r[name]
	return m, ok
}

// Merge returns a new registry holding the entries of r overridden by
// those of other.
func (r Registry) Merge(other Registry) Registry {
	merged := make(Registry, len(r)+len(other))
	for name, m := range r {
		merged[name] = m
	}
	for name, m := range other {
		merged[name] = m
	}
	return merged
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Method string
	Arity  string
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("method %s expects %s argument(s), got %d", e.Method, describeArity(e.Arity), e.Got)
}

// Call invokes method name. The caller resolves unknown names; Call
// reports false when name is not registered.
func (r Registry) Call(name string, target any, args []any) (any, bool, error) {
	m, ok := r.Get(name)
	if !ok {
		return nil, false, nil
	}
	if !CheckArity(m.Arity, len(args)) {
		return nil, true, &ArityError{Method: name, Arity: m.Arity, Got: len(args)}
	}
	result, err := m.Fn(target, args)
	return result, true, err
}

// CheckArity validates an argument count against an arity spec: an exact
// count ("1"), a range ("0-2") or a minimum ("1+"). An empty or unknown
// spec accepts any count.
func CheckArity(spec string, got int) bool {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return true
	}

	if exact, err := strconv.Atoi(spec); err == nil {
		return got == exact
	}

	if lo, hi, found := strings.Cut(spec, "-"); found {
		minVal, errMin := strconv.Atoi(lo)
		maxVal, errMax := strconv.Atoi(hi)
		if errMin == nil && errMax == nil {
			return got >= minVal && got <= maxVal
		}
	}

	if suffix, found := strings.CutSuffix(spec, "+"); found {
		if minVal, err := strconv.Atoi(suffix); err == nil {
			return got >= minVal
		}
	}

	return true
}

func describeArity(spec string) string {
	if lo, hi, found := strings.Cut(spec, "-"); found {
		return lo + " to " + hi
	}
	if minVal, found := strings.CutSuffix(spec, "+"); found {
		return "at least " + minVal
	}
	return spec
}
