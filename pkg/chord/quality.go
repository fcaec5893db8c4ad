package chord

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
)

// Quality is the base chord type.
type Quality uint8

const (
	Major Quality = iota
	Minor
	Diminished
	Augmented
	Dominant
	Major7
	Minor7
	Sus2
	Sus4
	HalfDiminished
	Diminished7

	qualityCount
)

// step is a chord member expressed as a scale degree and its distance from
// the root in semitones.
type step struct {
	degree    int
	semitones int
}

type qualityInfo struct {
	name     string
	fullName string
	suffix   string
	aliases  []string
	steps    []step
}

var qualities = [qualityCount]qualityInfo{
	Major:          {"major", "Major", "", []string{"maj", "M"}, []step{{1, 0}, {3, 4}, {5, 7}}},
	Minor:          {"minor", "minor", "m", []string{"min", "-"}, []step{{1, 0}, {3, 3}, {5, 7}}},
	Diminished:     {"diminished", "diminished", "dim", []string{"°", "o"}, []step{{1, 0}, {3, 3}, {5, 6}}},
	Augmented:      {"augmented", "augmented", "aug", []string{"+"}, []step{{1, 0}, {3, 4}, {5, 8}}},
	Dominant:       {"dominant", "Dominant 7th", "7", []string{"dom7", "dom"}, []step{{1, 0}, {3, 4}, {5, 7}, {7, 10}}},
	Major7:         {"major7", "Major 7th", "maj7", []string{"M7", "Δ7", "Δ"}, []step{{1, 0}, {3, 4}, {5, 7}, {7, 11}}},
	Minor7:         {"minor7", "minor 7th", "m7", []string{"min7", "-7"}, []step{{1, 0}, {3, 3}, {5, 7}, {7, 10}}},
	Sus2:           {"sus2", "suspended 2nd", "sus2", nil, []step{{1, 0}, {2, 2}, {5, 7}}},
	Sus4:           {"sus4", "suspended 4th", "sus4", []string{"sus"}, []step{{1, 0}, {4, 5}, {5, 7}}},
	HalfDiminished: {"half-diminished", "half-diminished 7th", "m7b5", []string{"ø", "ø7"}, []step{{1, 0}, {3, 3}, {5, 6}, {7, 10}}},
	Diminished7:    {"diminished7", "diminished 7th", "dim7", []string{"°7", "o7"}, []step{{1, 0}, {3, 3}, {5, 6}, {7, 9}}},
}

// progressions lists common progressions in which a chord of each quality
// appears, in Roman numeral notation relative to the key.
var progressions = [qualityCount][]string{
	Major:          {"I-IV-V-I", "I-V-vi-IV", "I-vi-IV-V"},
	Minor:          {"i-iv-v-i", "vi-IV-I-V", "i-bVI-bIII-bVII"},
	Diminished:     {"vii°-I", "I-#i°-ii"},
	Augmented:      {"I-I+-vi", "V+-I"},
	Dominant:       {"V7-I", "ii-V7-I", "I7-IV7-V7"},
	Major7:         {"ii7-V7-Imaj7", "Imaj7-IVmaj7"},
	Minor7:         {"ii7-V7-Imaj7", "i7-iv7-v7"},
	Sus2:           {"Isus2-I", "I-Isus2-IV"},
	Sus4:           {"Isus4-I", "V7sus4-V7-I"},
	HalfDiminished: {"iiø7-V7-i", "viiø7-Imaj7"},
	Diminished7:    {"vii°7-i", "I-#i°7-ii7"},
}

// Qualities returns every chord quality in declaration order.
func Qualities() []Quality {
	out := make([]Quality, 0, qualityCount)
	for q := Major; q < qualityCount; q++ {
		out = append(out, q)
	}
	return out
}

// Valid reports whether q is a known quality.
func (q Quality) Valid() bool { return q < qualityCount }

func (q Quality) String() string {
	if !q.Valid() {
		return "unknown"
	}
	return qualities[q].name
}

// Suffix returns the chord-symbol suffix, e.g. "m7" for Minor7.
func (q Quality) Suffix() string {
	if !q.Valid() {
		return ""
	}
	return qualities[q].suffix
}

// Progressions returns common progressions featuring the quality.
func (q Quality) Progressions() []string {
	if !q.Valid() {
		return nil
	}
	return slices.Clone(progressions[q])
}

// IsSeventh reports whether the quality already contains a seventh.
func (q Quality) IsSeventh() bool {
	if !q.Valid() {
		return false
	}
	for _, s := range qualities[q].steps {
		if s.degree == 7 {
			return true
		}
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid chord quality %d", uint8(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseQuality resolves a quality by name ("minor7"), symbol suffix ("m7")
// or alias ("min7"). Names match case-insensitively; suffixes and aliases
// are case-sensitive so that "M7" and "m7" stay distinct.
func ParseQuality(s string) (Quality, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Major, nil
	}
	for q := Major; q < qualityCount; q++ {
		info := qualities[q]
		if strings.EqualFold(info.name, trimmed) || info.suffix == trimmed {
			return q, nil
		}
		for _, alias := range info.aliases {
			if alias == trimmed {
				return q, nil
			}
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown chord quality %q", s)
}

// Extension is an added chord tone beyond the basic quality.
type Extension uint8

const (
	Sixth Extension = iota
	Ninth
	Eleventh
	Thirteenth

	extensionCount
)

var extensions = [extensionCount]step{
	Sixth:      {6, 9},
	Ninth:      {9, 14},
	Eleventh:   {11, 17},
	Thirteenth: {13, 21},
}

func (e Extension) Valid() bool { return e < extensionCount }

func (e Extension) String() string {
	if !e.Valid() {
		return "?"
	}
	return strconv.Itoa(extensions[e].degree)
}

// MarshalText implements encoding.TextMarshaler.
func (e Extension) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid extension %d", uint8(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Extension) UnmarshalText(text []byte) error {
	parsed, err := ParseExtension(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseExtension accepts "6", "9", "11", "13", optionally prefixed "add".
func ParseExtension(s string) (Extension, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "add")
	for e := Sixth; e < extensionCount; e++ {
		if e.String() == key {
			return e, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown extension %q (want 6, 9, 11 or 13)", s)
}

// Alteration raises or lowers a fifth or an upper extension.
type Alteration uint8

const (
	FlatFive Alteration = iota
	SharpFive
	FlatNine
	SharpNine
	SharpEleven
	FlatThirteen

	alterationCount
)

var alterations = [alterationCount]struct {
	label string
	step
}{
	FlatFive:     {"b5", step{5, 6}},
	SharpFive:    {"#5", step{5, 8}},
	FlatNine:     {"b9", step{9, 13}},
	SharpNine:    {"#9", step{9, 15}},
	SharpEleven:  {"#11", step{11, 18}},
	FlatThirteen: {"b13", step{13, 20}},
}

func (a Alteration) Valid() bool { return a < alterationCount }

func (a Alteration) String() string {
	if !a.Valid() {
		return "?"
	}
	return alterations[a].label
}

// MarshalText implements encoding.TextMarshaler.
func (a Alteration) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid alteration %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alteration) UnmarshalText(text []byte) error {
	parsed, err := ParseAlteration(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAlteration accepts "b5", "#5", "b9", "#9", "#11" and "b13". The
// Unicode accidentals ♭ and ♯ are also recognised.
func ParseAlteration(s string) (Alteration, error) {
	key := strings.NewReplacer("♭", "b", "♯", "#").Replace(strings.TrimSpace(s))
	for a := FlatFive; a < alterationCount; a++ {
		if alterations[a].label == key {
			return a, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown alteration %q", s)
}
