package render

import (
	"encoding/json"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent string
}

// WithJSONIndent sets the indentation; "" produces compact output.
func WithJSONIndent(indent string) JSONOption { return func(r *jsonRenderer) { r.indent = indent } }

// RenderJSON encodes fb as its JSON document, indented by two spaces
// unless configured otherwise.
func RenderJSON(fb fretboard.Fretboard, opts ...JSONOption) ([]byte, error) {
	r := &jsonRenderer{indent: "  "}
	for _, opt := range opts {
		opt(r)
	}
	var (
		data []byte
		err  error
	)
	if r.indent == "" {
		data, err = json.Marshal(fb)
	} else {
		data, err = json.MarshalIndent(fb, "", r.indent)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode fretboard")
	}
	return append(data, '\n'), nil
}
