package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported data format")

// FormatForPath picks the decoder for a data file by extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load decodes JSON or YAML text. Both are read with goccy/go-yaml in
// ordered-map mode, so object keys keep their document order.
func Load(data []byte, format string) (any, error) {
	switch format {
	case "json", "yaml", "yml":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Undefined, nil
	}
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("failed to parse %s data: %w", format, err)
	}
	return Normalize(raw), nil
}

func LoadFile(path string) (any, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return Load(data, format)
}

// ParseJSON decodes a JSON document.
func ParseJSON(text string) (any, error) {
	return Load([]byte(text), "json")
}

// MustParse decodes a JSON or YAML literal and panics on error. It is
// meant for fixtures.
func MustParse(text string) any {
	v, err := Load([]byte(text), "yaml")
	if err != nil {
		panic(err)
	}
	return v
}

// Normalize converts decoder output and plain Go values into the value
// model: ordered maps become *Object, integers become float64, and typed
// slices and maps are converted recursively.
func Normalize(v any) any {
	switch v := v.(type) {
	case nil, UndefinedType, bool, float64, string, *Object:
		return v
	case yaml.MapSlice:
		o := NewObject()
		for _, item := range v {
			o.Set(fmt.Sprint(item.Key), Normalize(item.Value))
		}
		return o
	case map[string]any:
		o := NewObject()
		for _, key := range Keys(v) {
			o.Set(key, Normalize(v[key]))
		}
		return o
	case map[any]any:
		m := make(map[string]any, len(v))
		for key, member := range v {
			m[fmt.Sprint(key)] = member
		}
		return Normalize(m)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return f
	}
	return v
}

// MarshalJSON encodes v, writing Undefined as null.
func MarshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndentJSON encodes v with two-space indentation.
func MarshalIndentJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// MarshalYAML encodes v as YAML, keeping object key order.
func MarshalYAML(v any) ([]byte, error) {
	return yaml.Marshal(v)
}
