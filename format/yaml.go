package format

import (
	"io"

	"github.com/dhamidi/trail/query/value"
)

type YAMLEncoder struct {
	w io.Writer
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(v any) error {
	text, err := value.MarshalYAML(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}
