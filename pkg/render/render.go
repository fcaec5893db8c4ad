package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
)

// Format names an output of [Render].
type Format string

const (
	FormatText Format = "text"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// Formats lists the formats [Render] accepts.
var Formats = []Format{FormatText, FormatSVG, FormatJSON}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown output format %q (want text, svg or json)", s)
	}
	return f, nil
}

// Options bundles per-format options for [Render].
type Options struct {
	Text []TextOption
	SVG  []SVGOption
	JSON []JSONOption
}

// Render produces fb in the given format.
func Render(fb fretboard.Fretboard, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return RenderText(fb, opts.Text...), nil
	case FormatSVG:
		return RenderSVG(fb, opts.SVG...), nil
	case FormatJSON:
		return RenderJSON(fb, opts.JSON...)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown output format %q", string(format))
}
