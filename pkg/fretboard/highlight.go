package fretboard

import "github.com/matzehuels/fretboard/pkg/errors"

// HighlightType is the single label a fret receives. Values are ordered by
// precedence: a higher value wins when several categories apply.
type HighlightType uint8

const (
	HighlightNone HighlightType = iota
	HighlightInterval
	HighlightScaleNote
	HighlightChordTone
	HighlightRoot
)

var highlightNames = [...]string{"none", "interval", "scaleNote", "chordTone", "root"}

func (h HighlightType) String() string {
	if int(h) < len(highlightNames) {
		return highlightNames[h]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (h HighlightType) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HighlightType) UnmarshalText(text []byte) error {
	for i, name := range highlightNames {
		if name == string(text) {
			*h = HighlightType(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown highlight type %q", string(text))
}

// Candidates records every category that claims a fret.
type Candidates struct {
	Root      bool
	ChordTone bool
	ScaleNote bool
	Interval  bool
}

// Resolve picks the winning label: root, then chordTone, scaleNote,
// interval and finally none.
func Resolve(c Candidates) HighlightType {
	switch {
	case c.Root:
		return HighlightRoot
	case c.ChordTone:
		return HighlightChordTone
	case c.ScaleNote:
		return HighlightScaleNote
	case c.Interval:
		return HighlightInterval
	default:
		return HighlightNone
	}
}
