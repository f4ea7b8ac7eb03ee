package value

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// Object is a JSON object that remembers key insertion order. Queries
// enumerate keys in that order, so completions and results follow the
// layout of the source document.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an object from alternating key/value arguments.
func ObjectOf(pairs ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		o.Set(key, pairs[i+1])
	}
	return o
}

// Set stores v under key. A new key is appended; an existing key keeps
// its position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]any, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON writes keys in insertion order. Undefined members are
// omitted, as a JSON encoder of the query language's host would do.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, key := range o.keys {
		v := o.values[key]
		if IsUndefined(v) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML lets goccy/go-yaml emit the object as an ordered mapping.
func (o *Object) MarshalYAML() (any, error) {
	slice := make(yaml.MapSlice, 0, len(o.keys))
	for _, key := range o.keys {
		v := o.values[key]
		if IsUndefined(v) {
			continue
		}
		slice = append(slice, yaml.MapItem{Key: key, Value: v})
	}
	return slice, nil
}
