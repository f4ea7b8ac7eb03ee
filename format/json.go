package format

import (
	"io"

	"github.com/dhamidi/trail/query/value"
)

// JSONEncoder writes results as indented JSON. Object members keep
// their document order and undefined members are left out.
type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(v any) error {
	text, err := e.MarshalText(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText(v any) ([]byte, error) {
	return value.MarshalIndentJSON(v)
}
