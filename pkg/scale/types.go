package scale

import (
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
)

// Type is one of the built-in scale and mode definitions.
type Type uint8

const (
	Major Type = iota
	NaturalMinor
	HarmonicMinor
	MelodicMinor
	Dorian
	Phrygian
	Lydian
	Mixolydian
	Locrian
	PentatonicMajor
	PentatonicMinor
	Blues

	typeCount
)

// Mode describes a scale as a rotation of a parent scale.
type Mode struct {
	ParentScale    Type `json:"parentScale"`
	ModeNumber     int  `json:"modeNumber"`
	StartingDegree int  `json:"startingDegree"`
}

type definition struct {
	name            string
	aliases         []string
	intervals       []int
	mode            *Mode
	characteristics []string
	genres          []string
	progressions    [][]string
}

func modeOfMajor(n int) *Mode {
	return &Mode{ParentScale: Major, ModeNumber: n, StartingDegree: n}
}

var definitions = [typeCount]definition{
	Major: {
		name:            "major",
		aliases:         []string{"ionian"},
		intervals:       []int{2, 2, 1, 2, 2, 2, 1},
		mode:            modeOfMajor(1),
		characteristics: []string{"major third", "major seventh"},
		genres:          []string{"pop", "rock", "folk", "classical", "country"},
		progressions:    [][]string{{"I", "V", "vi", "IV"}, {"ii", "V", "I"}, {"I", "IV", "V"}},
	},
	NaturalMinor: {
		name:            "natural minor",
		aliases:         []string{"aeolian", "minor"},
		intervals:       []int{2, 1, 2, 2, 1, 2, 2},
		mode:            modeOfMajor(6),
		characteristics: []string{"minor third", "minor sixth", "minor seventh"},
		genres:          []string{"rock", "metal", "pop", "classical"},
		progressions:    [][]string{{"i", "VI", "III", "VII"}, {"i", "iv", "v"}, {"i", "VII", "VI", "VII"}},
	},
	HarmonicMinor: {
		name:            "harmonic minor",
		intervals:       []int{2, 1, 2, 2, 1, 3, 1},
		characteristics: []string{"minor sixth", "major seventh", "augmented second"},
		genres:          []string{"classical", "metal", "flamenco", "jazz"},
		progressions:    [][]string{{"i", "iv", "V"}, {"i", "VI", "V"}},
	},
	MelodicMinor: {
		name:            "melodic minor",
		aliases:         []string{"jazz minor"},
		intervals:       []int{2, 1, 2, 2, 2, 2, 1},
		characteristics: []string{"minor third", "major sixth", "major seventh"},
		genres:          []string{"jazz", "classical", "fusion"},
		progressions:    [][]string{{"i", "IV", "V"}, {"ii", "V", "i"}},
	},
	Dorian: {
		name:            "dorian",
		intervals:       []int{2, 1, 2, 2, 2, 1, 2},
		mode:            modeOfMajor(2),
		characteristics: []string{"minor third", "major sixth"},
		genres:          []string{"jazz", "funk", "rock", "folk"},
		progressions:    [][]string{{"i", "IV"}, {"i", "ii", "IV"}},
	},
	Phrygian: {
		name:            "phrygian",
		intervals:       []int{1, 2, 2, 2, 1, 2, 2},
		mode:            modeOfMajor(3),
		characteristics: []string{"minor second"},
		genres:          []string{"flamenco", "metal"},
		progressions:    [][]string{{"i", "II"}, {"i", "II", "III"}},
	},
	Lydian: {
		name:            "lydian",
		intervals:       []int{2, 2, 2, 1, 2, 2, 1},
		mode:            modeOfMajor(4),
		characteristics: []string{"augmented fourth", "major seventh"},
		genres:          []string{"jazz", "film", "progressive rock"},
		progressions:    [][]string{{"I", "II"}, {"I", "II", "vii"}},
	},
	Mixolydian: {
		name:            "mixolydian",
		intervals:       []int{2, 2, 1, 2, 2, 1, 2},
		mode:            modeOfMajor(5),
		characteristics: []string{"major third", "minor seventh"},
		genres:          []string{"blues", "rock", "funk", "country"},
		progressions:    [][]string{{"I", "bVII", "IV"}, {"I", "v", "IV"}},
	},
	Locrian: {
		name:            "locrian",
		intervals:       []int{1, 2, 2, 1, 2, 2, 2},
		mode:            modeOfMajor(7),
		characteristics: []string{"minor second", "diminished fifth"},
		genres:          []string{"metal", "jazz"},
		progressions:    [][]string{{"i°", "II", "iii"}},
	},
	PentatonicMajor: {
		name:            "pentatonic major",
		aliases:         []string{"major pentatonic"},
		intervals:       []int{2, 2, 3, 2, 3},
		characteristics: []string{"no half steps"},
		genres:          []string{"country", "rock", "folk", "blues"},
		progressions:    [][]string{{"I", "IV", "V"}},
	},
	PentatonicMinor: {
		name:            "pentatonic minor",
		aliases:         []string{"minor pentatonic"},
		intervals:       []int{3, 2, 2, 3, 2},
		characteristics: []string{"minor third", "minor seventh"},
		genres:          []string{"blues", "rock", "metal"},
		progressions:    [][]string{{"i", "iv", "v"}, {"i", "bVII", "IV"}},
	},
	Blues: {
		name:            "blues",
		aliases:         []string{"minor blues"},
		intervals:       []int{3, 2, 1, 1, 3, 2},
		characteristics: []string{"diminished fifth", "minor seventh"},
		genres:          []string{"blues", "rock", "jazz"},
		progressions:    [][]string{{"I7", "IV7", "I7", "V7", "IV7", "I7"}},
	},
}

// Types returns every built-in scale type in declaration order.
func Types() []Type {
	out := make([]Type, 0, typeCount)
	for t := Major; t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a built-in scale type.
func (t Type) Valid() bool { return t < typeCount }

func (t Type) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return definitions[t].name
}

// Intervals returns a copy of the step pattern in semitones.
func (t Type) Intervals() []int {
	if !t.Valid() {
		return nil
	}
	return append([]int(nil), definitions[t].intervals...)
}

// Aliases returns alternative names, e.g. "ionian" for major.
func (t Type) Aliases() []string {
	if !t.Valid() {
		return nil
	}
	return append([]string(nil), definitions[t].aliases...)
}

// Mode returns the parent-scale rotation if t is one of the church modes.
func (t Type) Mode() (Mode, bool) {
	if !t.Valid() || definitions[t].mode == nil {
		return Mode{}, false
	}
	return *definitions[t].mode, true
}

// CharacteristicIntervals returns the intervals that define the scale's color.
func (t Type) CharacteristicIntervals() []string {
	if !t.Valid() {
		return nil
	}
	return append([]string(nil), definitions[t].characteristics...)
}

// Genres returns musical styles where the scale is common.
func (t Type) Genres() []string {
	if !t.Valid() {
		return nil
	}
	return append([]string(nil), definitions[t].genres...)
}

// CommonProgressions returns Roman-numeral progressions built on the scale.
func (t Type) CommonProgressions() [][]string {
	if !t.Valid() {
		return nil
	}
	out := make([][]string, len(definitions[t].progressions))
	for i, p := range definitions[t].progressions {
		out[i] = append([]string(nil), p...)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid scale type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType resolves a scale name or alias. Matching ignores case, and
// hyphens or underscores may stand in for spaces ("natural-minor").
func ParseType(s string) (Type, error) {
	if err := errors.ValidateName("scale type", s); err != nil {
		return 0, err
	}
	key := normalize(s)
	for t := Major; t < typeCount; t++ {
		if normalize(definitions[t].name) == key {
			return t, nil
		}
		for _, alias := range definitions[t].aliases {
			if normalize(alias) == key {
				return t, nil
			}
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown scale type %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
