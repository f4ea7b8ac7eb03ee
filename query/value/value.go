// Package value defines the JSON-like data model queries operate on.
//
// A value is one of: nil (null), Undefined, bool, float64, string, []any
// (array), *Object (ordered object) or map[string]any (unordered object,
// enumerated in sorted key order). Data decoded by Load is normalized to
// these types.
package value

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

// Undefined marks the absence of a value, for example a missing property.
// It is distinct from nil, which is JSON null.
var Undefined = UndefinedType{}

func (UndefinedType) String() string { return "undefined" }

func (UndefinedType) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (UndefinedType) MarshalYAML() (any, error) { return nil, nil }

func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}

// IsObject reports whether v has named members.
func IsObject(v any) bool {
	switch v.(type) {
	case *Object, map[string]any:
		return true
	}
	return false
}

// AsList returns v as an array when it is one.
func AsList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// Keys returns the member names of an object in enumeration order, or nil
// for anything else.
func Keys(v any) []string {
	switch v := v.(type) {
	case *Object:
		return v.Keys()
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return nil
}

// Get returns member key of an object, or Undefined when v is not an
// object or has no such member.
func Get(v any, key string) any {
	switch v := v.(type) {
	case *Object:
		if member, ok := v.Get(key); ok {
			return member
		}
	case map[string]any:
		if member, ok := v[key]; ok {
			return member
		}
	}
	return Undefined
}

// HasKey reports whether the object v has a member named key.
func HasKey(v any, key string) bool {
	switch v := v.(type) {
	case *Object:
		return v.Has(key)
	case map[string]any:
		_, ok := v[key]
		return ok
	}
	return false
}

// Truthy reports whether v counts as true in a condition. Empty arrays,
// nil, Undefined, false, 0, NaN and the empty string are false.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil, UndefinedType:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	}
	return true
}

// Equal reports deep structural equality.
func Equal(a, b any) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case UndefinedType:
		return IsUndefined(b)
	case bool:
		bb, ok := b.(bool)
		return ok && a == bb
	case float64:
		bf, ok := b.(float64)
		return ok && a == bf
	case string:
		bs, ok := b.(string)
		return ok && a == bs
	case []any:
		bl, ok := b.([]any)
		if !ok || len(a) != len(bl) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}
		return true
	case *Object, map[string]any:
		if !IsObject(b) {
			return false
		}
		ak, bk := Keys(a), Keys(b)
		if len(ak) != len(bk) {
			return false
		}
		for _, k := range ak {
			if !HasKey(b, k) || !Equal(Get(a, k), Get(b, k)) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ToNumber coerces v to a number. Values without a numeric reading
// become 0.
func ToNumber(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// ToString renders scalars the way they print in query output. Arrays and
// objects produce their JSON text.
func ToString(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return FormatNumber(v)
	}
	data, err := MarshalJSON(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// FormatNumber prints integral numbers without a fraction.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Compare orders two values: numbers numerically, strings lexically, and
// mixed operands by their numeric reading.
func Compare(a, b any) int {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs)
	}
	af, bf := ToNumber(a), ToNumber(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

// TypeName names the kind of v.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object, map[string]any:
		return "object"
	}
	return reflect.TypeOf(v).String()
}
