package fretboard

import (
	"encoding/json"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/scale"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// sourceJSON is the tagged wire form of a Source.
type sourceJSON struct {
	Kind     SourceKind      `json:"kind"`
	Scale    *scale.Scale    `json:"scale,omitempty"`
	Chord    *chord.Chord    `json:"chord,omitempty"`
	Position *chord.Position `json:"position,omitempty"`
}

type fretboardJSON struct {
	Strings   []GuitarString `json:"strings"`
	Tuning    tuning.Name    `json:"tuning"`
	StartFret int            `json:"startFret"`
	EndFret   int            `json:"endFret"`
	Source    sourceJSON     `json:"highlightSource"`
	Root      *note.Note     `json:"rootNote,omitempty"`
	Selected  note.PitchSet  `json:"selectedNotes"`
	Hovered   *Coord         `json:"hoveredFret,omitempty"`
	Display   Display        `json:"displayOptions"`
}

func encodeSource(src Source) sourceJSON {
	switch s := src.(type) {
	case ScaleSource:
		return sourceJSON{Kind: SourceScale, Scale: &s.Scale}
	case ChordSource:
		return sourceJSON{Kind: SourceChord, Chord: &s.Chord, Position: s.Position}
	default:
		return sourceJSON{Kind: SourceNone}
	}
}

func decodeSource(s sourceJSON) (Source, error) {
	switch s.Kind {
	case SourceScale:
		if s.Scale == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "scale source without scale")
		}
		return ScaleSource{Scale: *s.Scale}, nil
	case SourceChord:
		if s.Chord == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "chord source without chord")
		}
		return ChordSource{Chord: *s.Chord, Position: s.Position}, nil
	default:
		return NoSource{}, nil
	}
}

// MarshalJSON encodes the board with its source as a tagged object.
func (fb Fretboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(fretboardJSON{
		Strings:   fb.Strings,
		Tuning:    fb.Tuning,
		StartFret: fb.StartFret,
		EndFret:   fb.EndFret,
		Source:    encodeSource(fb.Source),
		Root:      fb.Root,
		Selected:  fb.Selected,
		Hovered:   fb.Hovered,
		Display:   fb.Display,
	})
}

// UnmarshalJSON decodes a board produced by MarshalJSON.
func (fb *Fretboard) UnmarshalJSON(data []byte) error {
	var raw fretboardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode fretboard")
	}
	src, err := decodeSource(raw.Source)
	if err != nil {
		return err
	}
	*fb = Fretboard{
		Strings:   raw.Strings,
		Tuning:    raw.Tuning,
		StartFret: raw.StartFret,
		EndFret:   raw.EndFret,
		Source:    src,
		Root:      raw.Root,
		Selected:  raw.Selected,
		Hovered:   raw.Hovered,
		Display:   raw.Display,
	}
	return nil
}
