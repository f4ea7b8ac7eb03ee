package eval

import (
	"math"
	"strings"

	"github.com/dhamidi/trail/query/value"
)

// elements returns the members of a list, nothing for Undefined and the
// value itself otherwise.
func elements(v any) []any {
	if list, ok := value.AsList(v); ok {
		return list
	}
	if value.IsUndefined(v) {
		return nil
	}
	return []any{v}
}

// mapValues applies fn to base, or to each element when base is a list.
// For a list the results are flattened one level and collected without
// Undefined and without duplicates, in first-seen order.
func mapValues(base any, fn func(any) (any, error)) (any, error) {
	list, ok := value.AsList(base)
	if !ok {
		return fn(base)
	}
	result := value.NewSet()
	for _, item := range list {
		v, err := fn(item)
		if err != nil {
			return nil, err
		}
		for _, member := range elements(v) {
			result.Add(member)
		}
	}
	return result.Items(), nil
}

func add(left, right any) any {
	_, leftList := value.AsList(left)
	_, rightList := value.AsList(right)
	if leftList || rightList {
		union := value.NewSet()
		for _, v := range elements(left) {
			union.Add(v)
		}
		for _, v := range elements(right) {
			union.Add(v)
		}
		return union.Items()
	}

	_, leftString := left.(string)
	_, rightString := right.(string)
	if leftString || rightString {
		return value.ToString(left) + value.ToString(right)
	}

	if value.IsObject(left) && value.IsObject(right) {
		merged := value.NewObject()
		for _, key := range value.Keys(left) {
			merged.Set(key, value.Get(left, key))
		}
		for _, key := range value.Keys(right) {
			merged.Set(key, value.Get(right, key))
		}
		return merged
	}

	return value.ToNumber(left) + value.ToNumber(right)
}

func subtract(left, right any) any {
	list, ok := value.AsList(left)
	if !ok {
		return value.ToNumber(left) - value.ToNumber(right)
	}
	excluded := value.NewSet()
	for _, v := range elements(right) {
		excluded.Add(v)
	}
	result := []any{}
	for _, v := range list {
		if !excluded.Has(v) {
			result = append(result, v)
		}
	}
	return result
}

// contains implements `in`: membership for lists, member names for
// objects and substrings for strings.
func contains(container, item any) bool {
	switch c := container.(type) {
	case []any:
		for _, v := range c {
			if value.Equal(v, item) {
				return true
			}
		}
		return false
	case string:
		s, ok := item.(string)
		return ok && strings.Contains(c, s)
	}
	if value.IsObject(container) {
		key, ok := item.(string)
		return ok && value.HasKey(container, key)
	}
	return false
}

// ordered reports whether two operands can be compared with < and
// friends. Undefined and NaN never compare.
func ordered(left, right any) bool {
	for _, v := range []any{left, right} {
		if value.IsUndefined(v) {
			return false
		}
		if _, isString := v.(string); !isString && math.IsNaN(value.ToNumber(v)) {
			return false
		}
	}
	return true
}
