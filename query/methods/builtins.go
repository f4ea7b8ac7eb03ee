package methods

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/trail/query/value"
)

// Builtins returns a fresh registry with the standard methods.
func Builtins() Registry {
	return Registry{
		"size": {
			Fn:          size,
			Arity:       "0",
			Collection:  true,
			Description: "Number of elements, members or characters",
		},
		"keys": {
			Fn:          keys,
			Arity:       "0",
			Collection:  true,
			Description: "Member names of an object",
		},
		"values": {
			Fn:          values,
			Arity:       "0",
			Collection:  true,
			Description: "Member values of an object",
		},
		"entries": {
			Fn:          entries,
			Arity:       "0",
			Collection:  true,
			Description: "Members of an object as {key, value} objects",
		},
		"sort": {
			Fn:          sortList,
			Arity:       "0",
			Collection:  true,
			Description: "Sorted copy of a list",
		},
		"reverse": {
			Fn:          reverse,
			Arity:       "0",
			Collection:  true,
			Description: "Reversed copy of a list",
		},
		"first": {
			Fn:          first,
			Arity:       "0",
			Collection:  true,
			Description: "First element of a list",
		},
		"last": {
			Fn:          last,
			Arity:       "0",
			Collection:  true,
			Description: "Last element of a list",
		},
		"join": {
			Fn:          join,
			Arity:       "0-1",
			Collection:  true,
			Description: "Concatenate list elements with a separator (default \",\")",
		},
		"count": {
			Fn:          count,
			Arity:       "0",
			Collection:  true,
			Description: "Number of values, treating a single value as one",
		},
		"sum": {
			Fn:          sum,
			Arity:       "0",
			Collection:  true,
			Description: "Numeric sum of a list",
		},
		"min": {
			Fn:          minOf,
			Arity:       "0",
			Collection:  true,
			Description: "Smallest element of a list",
		},
		"max": {
			Fn:          maxOf,
			Arity:       "0",
			Collection:  true,
			Description: "Largest element of a list",
		},
		"lower": {
			Fn:          mapString(strings.ToLower),
			Arity:       "0",
			Description: "Lower-case a string",
		},
		"upper": {
			Fn:          mapString(strings.ToUpper),
			Arity:       "0",
			Description: "Upper-case a string",
		},
		"split": {
			Fn:          split,
			Arity:       "0-1",
			Description: "Split a string by a separator (default \",\")",
		},
		"toNumber": {
			Fn: func(target any, _ []any) (any, error) {
				return value.ToNumber(target), nil
			},
			Arity:       "0",
			Description: "Numeric reading of a value",
		},
		"toString": {
			Fn: func(target any, _ []any) (any, error) {
				return value.ToString(target), nil
			},
			Arity:       "0",
			Description: "Text form of a value",
		},
	}
}

func size(target any, _ []any) (any, error) {
	switch v := target.(type) {
	case []any:
		return float64(len(v)), nil
	case string:
		return float64(utf8.RuneCountInString(v)), nil
	}
	if value.IsObject(target) {
		return float64(len(value.Keys(target))), nil
	}
	return 0.0, nil
}

func keys(target any, _ []any) (any, error) {
	names := value.Keys(target)
	result := make([]any, len(names))
	for i, name := range names {
		result[i] = name
	}
	return result, nil
}

func values(target any, _ []any) (any, error) {
	if list, ok := value.AsList(target); ok {
		return list, nil
	}
	names := value.Keys(target)
	result := make([]any, len(names))
	for i, name := range names {
		result[i] = value.Get(target, name)
	}
	return result, nil
}

func entries(target any, _ []any) (any, error) {
	names := value.Keys(target)
	result := make([]any, len(names))
	for i, name := range names {
		result[i] = value.ObjectOf("key", name, "value", value.Get(target, name))
	}
	return result, nil
}

func sortList(target any, _ []any) (any, error) {
	list, ok := value.AsList(target)
	if !ok {
		return target, nil
	}
	sorted := make([]any, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return value.Compare(sorted[i], sorted[j]) < 0
	})
	return sorted, nil
}

func reverse(target any, _ []any) (any, error) {
	list, ok := value.AsList(target)
	if !ok {
		return target, nil
	}
	reversed := make([]any, len(list))
	for i, item := range list {
		reversed[len(list)-1-i] = item
	}
	return reversed, nil
}

func first(target any, _ []any) (any, error) {
	list, ok := value.AsList(target)
	if !ok {
		return target, nil
	}
	if len(list) == 0 {
		return value.Undefined, nil
	}
	return list[0], nil
}

func last(target any, _ []any) (any, error) {
	list, ok := value.AsList(target)
	if !ok {
		return target, nil
	}
	if len(list) == 0 {
		return value.Undefined, nil
	}
	return list[len(list)-1], nil
}

func join(target any, args []any) (any, error) {
	sep := ","
	if len(args) > 0 {
		sep = value.ToString(args[0])
	}
	list, ok := value.AsList(target)
	if !ok {
		return value.ToString(target), nil
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = value.ToString(item)
	}
	return strings.Join(parts, sep), nil
}

func count(target any, _ []any) (any, error) {
	if list, ok := value.AsList(target); ok {
		return float64(len(list)), nil
	}
	if target == nil || value.IsUndefined(target) {
		return 0.0, nil
	}
	return 1.0, nil
}

func sum(target any, _ []any) (any, error) {
	list, ok := value.AsList(target)
	if !ok {
		return value.ToNumber(target), nil
	}
	total := 0.0
	for _, item := range list {
		total += value.ToNumber(item)
	}
	return total, nil
}

func minOf(target any, _ []any) (any, error) {
	return extreme(target, -1), nil
}

func maxOf(target any, _ []any) (any, error) {
	return extreme(target, 1), nil
}

func extreme(target any, sign int) any {
	list, ok := value.AsList(target)
	if !ok {
		return target
	}
	if len(list) == 0 {
		return value.Undefined
	}
	best := list[0]
	for _, item := range list[1:] {
		if value.Compare(item, best)*sign > 0 {
			best = item
		}
	}
	return best
}

func mapString(fn func(string) string) MethodFunc {
	return func(target any, _ []any) (any, error) {
		if s, ok := target.(string); ok {
			return fn(s), nil
		}
		return target, nil
	}
}

func split(target any, args []any) (any, error) {
	s, ok := target.(string)
	if !ok {
		return target, nil
	}
	sep := ","
	if len(args) > 0 {
		sep = value.ToString(args[0])
	}
	parts := strings.Split(s, sep)
	result := make([]any, len(parts))
	for i, part := range parts {
		result[i] = part
	}
	return result, nil
}
