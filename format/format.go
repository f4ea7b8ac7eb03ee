// Package format renders query syntax trees, tokens and query results for
// the command line.
package format

import (
	"fmt"
	"io"
)

// Encoder writes one query result.
type Encoder interface {
	Encode(v any) error
}

// NewEncoder returns the result encoder registered under name: json,
// yaml or line.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s (expected json, yaml, or line)", name)
}
