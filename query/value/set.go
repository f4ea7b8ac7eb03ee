package value

import "reflect"

type sliceIdentity struct {
	ptr uintptr
	len int
}

type mapIdentity struct {
	ptr uintptr
}

// Identity returns a comparable key for v: the reference for arrays and
// objects, the value itself for scalars. Two occurrences of the same
// shared node in a data graph have the same identity. Arrays without
// backing storage all share one address, so each occurrence of one is
// distinct.
func Identity(v any) any {
	switch v := v.(type) {
	case *Object:
		return v
	case []any:
		if cap(v) == 0 {
			return &v
		}
		return sliceIdentity{ptr: reflect.ValueOf(v).Pointer(), len: len(v)}
	case map[string]any:
		return mapIdentity{ptr: reflect.ValueOf(v).Pointer()}
	case nil, UndefinedType, bool, float64, string:
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return mapIdentity{ptr: rv.Pointer()}
	}
	if rv.Comparable() {
		return v
	}
	// Not comparable and not a reference: every occurrence is distinct.
	return &v
}

// Set collects distinct values by identity, preserving insertion order.
type Set struct {
	seen  map[any]struct{}
	items []any
}

func NewSet() *Set {
	return &Set{seen: make(map[any]struct{})}
}

// Add inserts v and reports whether it was not present yet.
func (s *Set) Add(v any) bool {
	key := Identity(v)
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *Set) Has(v any) bool {
	_, ok := s.seen[Identity(v)]
	return ok
}

func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the members in insertion order. The result is never nil.
func (s *Set) Items() []any {
	if s.items == nil {
		return []any{}
	}
	return s.items
}
