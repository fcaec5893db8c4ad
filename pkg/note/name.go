package note

import (
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
)

// Name is one of the 17 canonical note spellings.
type Name uint8

const (
	C Name = iota
	CSharp
	DFlat
	D
	DSharp
	EFlat
	E
	F
	FSharp
	GFlat
	G
	GSharp
	AFlat
	A
	ASharp
	BFlat
	B

	nameCount
)

// DisplayMode describes how a name is spelled.
type DisplayMode uint8

const (
	Natural DisplayMode = iota
	Sharp
	Flat
)

func (m DisplayMode) String() string {
	switch m {
	case Sharp:
		return "sharp"
	case Flat:
		return "flat"
	default:
		return "natural"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m DisplayMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Preference selects the spelling used for the five black-key pitch classes.
type Preference uint8

const (
	PreferSharp Preference = iota
	PreferFlat
)

func (p Preference) String() string {
	if p == PreferFlat {
		return "flat"
	}
	return "sharp"
}

// ParsePreference accepts "sharp", "sharps", "#", "flat", "flats" and "b".
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sharp", "sharps", "#", "♯":
		return PreferSharp, nil
	case "flat", "flats", "b", "♭":
		return PreferFlat, nil
	}
	return PreferSharp, errors.New(errors.ErrCodeInvalidInput, "unknown spelling preference %q (want sharp or flat)", s)
}

type nameInfo struct {
	label  string
	chroma int
	mode   DisplayMode
}

var nameTable = [nameCount]nameInfo{
	C:      {"C", 0, Natural},
	CSharp: {"C#", 1, Sharp},
	DFlat:  {"Db", 1, Flat},
	D:      {"D", 2, Natural},
	DSharp: {"D#", 3, Sharp},
	EFlat:  {"Eb", 3, Flat},
	E:      {"E", 4, Natural},
	F:      {"F", 5, Natural},
	FSharp: {"F#", 6, Sharp},
	GFlat:  {"Gb", 6, Flat},
	G:      {"G", 7, Natural},
	GSharp: {"G#", 8, Sharp},
	AFlat:  {"Ab", 8, Flat},
	A:      {"A", 9, Natural},
	ASharp: {"A#", 10, Sharp},
	BFlat:  {"Bb", 10, Flat},
	B:      {"B", 11, Natural},
}

var (
	sharpNames = [12]Name{C, CSharp, D, DSharp, E, F, FSharp, G, GSharp, A, ASharp, B}
	flatNames  = [12]Name{C, DFlat, D, EFlat, E, F, GFlat, G, AFlat, A, BFlat, B}
)

// Names returns all canonical names in chromatic order, sharps before flats.
func Names() []Name {
	out := make([]Name, 0, nameCount)
	for n := C; n < nameCount; n++ {
		out = append(out, n)
	}
	return out
}

// Valid reports whether n is one of the canonical names.
func (n Name) Valid() bool { return n < nameCount }

func (n Name) String() string {
	if !n.Valid() {
		return "?"
	}
	return nameTable[n].label
}

// Chroma returns the pitch class of the name (C=0).
func (n Name) Chroma() int {
	if !n.Valid() {
		return 0
	}
	return nameTable[n].chroma
}

// DisplayMode reports whether the name is natural, sharp or flat.
func (n Name) DisplayMode() DisplayMode {
	if !n.Valid() {
		return Natural
	}
	return nameTable[n].mode
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid note name %d", uint8(n))
	}
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// NameFor returns the canonical spelling of a pitch class. chroma is reduced
// modulo 12 first.
func NameFor(chroma int, pref Preference) Name {
	c := mod12(chroma)
	if pref == PreferFlat {
		return flatNames[c]
	}
	return sharpNames[c]
}

// ParseName parses a note name such as "C", "f#", "Bb", "E♭".
// The letter is case-insensitive; accidentals are '#', '♯', 'b' or '♭'.
func ParseName(s string) (Name, error) {
	if err := errors.ValidateName("note name", s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	r := []rune(s)
	letter := strings.ToUpper(string(r[0]))
	acc := string(r[1:])
	switch acc {
	case "♯":
		acc = "#"
	case "♭":
		acc = "b"
	}
	label := letter + acc
	for n := C; n < nameCount; n++ {
		if nameTable[n].label == label {
			return n, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown note name %q", s)
}

func mod12(v int) int {
	m := v % 12
	if m < 0 {
		m += 12
	}
	return m
}

// floorDiv12 divides by 12 rounding toward negative infinity.
func floorDiv12(v int) int {
	q := v / 12
	if v%12 < 0 {
		q--
	}
	return q
}
