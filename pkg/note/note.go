package note

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
)

// DefaultOctave is the octave assigned to notes created without one.
const DefaultOctave = 4

// Note is a spelled pitch. The zero value is C0.
type Note struct {
	Name   Name
	Octave int
}

// New returns the note name in octave.
func New(name Name, octave int) Note {
	return Note{Name: name, Octave: octave}
}

// FromChroma returns the pitch class pos spelled with pref, in DefaultOctave.
// It fails with INVALID_PITCH when pos is outside 0-11.
func FromChroma(pos int, pref Preference) (Note, error) {
	if err := errors.ValidateChroma(pos); err != nil {
		return Note{}, err
	}
	return Note{Name: NameFor(pos, pref), Octave: DefaultOctave}, nil
}

// FromMIDI returns the note for an absolute MIDI key number (C4 = 60).
func FromMIDI(key int, pref Preference) Note {
	return Note{Name: NameFor(key, pref), Octave: floorDiv12(key) - 1}
}

// Chroma returns the pitch class (0-11, C=0).
func (n Note) Chroma() int { return n.Name.Chroma() }

// DisplayMode reports how the note is spelled.
func (n Note) DisplayMode() DisplayMode { return n.Name.DisplayMode() }

// Preference returns the spelling preference implied by the note: flat for
// flat-spelled notes, sharp otherwise.
func (n Note) Preference() Preference {
	if n.DisplayMode() == Flat {
		return PreferFlat
	}
	return PreferSharp
}

// MIDI returns the absolute semitone number using the MIDI convention
// (C-1 = 0, C4 = 60, E2 = 40).
func (n Note) MIDI() int {
	return (n.Octave+1)*12 + n.Chroma()
}

// PitchEqual reports whether n and o sound the same pitch regardless of
// spelling.
func (n Note) PitchEqual(o Note) bool {
	return n.Chroma() == o.Chroma() && n.Octave == o.Octave
}

// SamePitchClass reports whether n and o share a chromatic position,
// ignoring octave.
func (n Note) SamePitchClass(o Note) bool {
	return n.Chroma() == o.Chroma()
}

// Respell returns the note spelled with pref. Naturals are unchanged.
func (n Note) Respell(pref Preference) Note {
	return Note{Name: NameFor(n.Chroma(), pref), Octave: n.Octave}
}

// Enharmonics returns the canonical spellings of the note's pitch class.
// See [Enharmonics].
func (n Note) Enharmonics() []Name { return Enharmonics(n) }

// Validate checks that the name is canonical and the octave is within 0-10.
func (n Note) Validate() error {
	if !n.Name.Valid() {
		return errors.New(errors.ErrCodeInvalidPitch, "invalid note name %d", uint8(n.Name))
	}
	return errors.ValidateOctave(n.Octave)
}

func (n Note) String() string {
	return n.Name.String() + strconv.Itoa(n.Octave)
}

// AddInterval moves n by semitones, which may be negative. The chromatic
// position wraps modulo 12 and the octave changes by the floor of
// (chroma+semitones)/12. The result keeps n's spelling preference.
func AddInterval(n Note, semitones int) Note {
	return Transpose(n, semitones, n.Preference())
}

// Transpose is AddInterval with an explicit spelling preference.
func Transpose(n Note, semitones int, pref Preference) Note {
	total := n.Chroma() + semitones
	return Note{
		Name:   NameFor(total, pref),
		Octave: n.Octave + floorDiv12(total),
	}
}

// Enharmonics returns every canonical name sharing n's chromatic position,
// including n's own name. Black keys return both the sharp and the flat
// spelling; naturals return just themselves.
func Enharmonics(n Note) []Name {
	c := n.Chroma()
	if sharpNames[c] == flatNames[c] {
		return []Name{sharpNames[c]}
	}
	return []Name{sharpNames[c], flatNames[c]}
}

// IntervalBetween returns the ascending distance from a to b in semitones,
// reduced modulo 12 (0-11). Octaves are ignored.
func IntervalBetween(a, b Note) int {
	return mod12(b.Chroma() - a.Chroma())
}

// Parse parses a note with an optional octave, such as "C#4", "eb2" or "A".
// A missing octave defaults to DefaultOctave.
func Parse(s string) (Note, error) {
	if err := errors.ValidateName("note", s); err != nil {
		return Note{}, err
	}
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return (r >= '0' && r <= '9') || r == '-' })
	if i < 0 {
		name, err := ParseName(s)
		if err != nil {
			return Note{}, err
		}
		return New(name, DefaultOctave), nil
	}
	if i == 0 {
		return Note{}, errors.New(errors.ErrCodeInvalidInput, "note %q has no name", s)
	}
	name, err := ParseName(s[:i])
	if err != nil {
		return Note{}, err
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return Note{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid octave in %q", s)
	}
	n := New(name, octave)
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	return n, nil
}

// MustParse is like Parse but panics on error. It is intended for
// package-level tables and tests.
func MustParse(s string) Note {
	n, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("note.MustParse(%q): %v", s, err))
	}
	return n
}

type noteJSON struct {
	Name              Name        `json:"name"`
	Octave            int         `json:"octave"`
	ChromaticPosition int         `json:"chromaticPosition"`
	EnharmonicNames   []Name      `json:"enharmonicNames"`
	DisplayMode       DisplayMode `json:"displayMode"`
}

// MarshalJSON encodes the note together with its derived fields.
func (n Note) MarshalJSON() ([]byte, error) {
	return json.Marshal(noteJSON{
		Name:              n.Name,
		Octave:            n.Octave,
		ChromaticPosition: n.Chroma(),
		EnharmonicNames:   n.Enharmonics(),
		DisplayMode:       n.DisplayMode(),
	})
}

// UnmarshalJSON decodes name and octave; derived fields are ignored.
func (n *Note) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   *Name `json:"name"`
		Octave int   `json:"octave"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == nil {
		return errors.New(errors.ErrCodeInvalidFormat, "note is missing a name")
	}
	*n = Note{Name: *raw.Name, Octave: raw.Octave}
	return nil
}
