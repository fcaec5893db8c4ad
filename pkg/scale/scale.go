// Package scale builds scales from a root note and an interval pattern.
//
// A pattern is an ordered list of positive semitone steps that must add up
// to exactly one octave (12). [Generate] applies the steps cumulatively from
// the root; [New] does the same for one of the built-in [Type] definitions
// and attaches degree labels.
//
// Membership tests ([Contains], [Scale.Contains]) compare pitch classes
// only, so a scale built in one octave matches notes anywhere on the neck.
package scale

import (
	"fmt"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

// majorSteps holds the semitone offsets of the major scale degrees, used to
// name degrees of seven-note scales relative to major.
var majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}

// Degree is one position of a generated scale.
type Degree struct {
	Number       int       `json:"degree"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	Semitones    int       `json:"intervalFromRoot"`
	Note         note.Note `json:"note"`
}

// Scale is a built-in scale type rooted on a note.
type Scale struct {
	Type      Type      `json:"type"`
	Root      note.Note `json:"root"`
	Intervals []int     `json:"intervals"`
	Degrees   []Degree  `json:"degrees"`
}

// Generate returns the notes of the scale with the given step pattern,
// starting at root. Each step must be positive and the steps must sum to 12;
// otherwise the error has code INVALID_SCALE_DEFINITION.
func Generate(root note.Note, pattern []int) ([]note.Note, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	notes := make([]note.Note, len(pattern))
	offset := 0
	for i, step := range pattern {
		notes[i] = note.AddInterval(root, offset)
		offset += step
	}
	return notes, nil
}

func validatePattern(pattern []int) error {
	if len(pattern) == 0 {
		return errors.New(errors.ErrCodeInvalidScaleDefinition, "interval pattern is empty")
	}
	sum := 0
	for i, step := range pattern {
		if step <= 0 {
			return errors.New(errors.ErrCodeInvalidScaleDefinition,
				"interval pattern %v has non-positive step %d at index %d", pattern, step, i)
		}
		sum += step
	}
	if sum != 12 {
		return errors.New(errors.ErrCodeInvalidScaleDefinition,
			"interval pattern %v sums to %d, want 12", pattern, sum)
	}
	return nil
}

// New builds the scale of type t rooted on root. Degrees are numbered 1..N
// in generation order. Seven-note scales are spelled with whichever
// accidental gives each degree its own letter, keeping the root as given.
func New(root note.Note, t Type) (Scale, error) {
	if !t.Valid() {
		return Scale{}, errors.New(errors.ErrCodeInvalidInput, "invalid scale type %d", uint8(t))
	}
	pattern := t.Intervals()
	notes, err := Generate(root, pattern)
	if err != nil {
		return Scale{}, err
	}
	notes = spell(notes, root)

	degrees := make([]Degree, len(notes))
	for i, n := range notes {
		semis := n.MIDI() - root.MIDI()
		degrees[i] = Degree{
			Number:       i + 1,
			Name:         note.IntervalName(semis),
			Abbreviation: abbreviation(i+1, semis, len(notes)),
			Semitones:    semis,
			Note:         n,
		}
	}
	return Scale{Type: t, Root: root, Intervals: pattern, Degrees: degrees}, nil
}

// MustNew is like New but panics on error.
func MustNew(root note.Note, t Type) Scale {
	s, err := New(root, t)
	if err != nil {
		panic(fmt.Sprintf("scale.MustNew(%v, %v): %v", root, t, err))
	}
	return s
}

// Name returns the display name, e.g. "A natural minor".
func (s Scale) Name() string {
	return s.Root.Name.String() + " " + s.Type.String()
}

// Notes returns the scale notes in degree order.
func (s Scale) Notes() []note.Note {
	out := make([]note.Note, len(s.Degrees))
	for i, d := range s.Degrees {
		out[i] = d.Note
	}
	return out
}

// PitchSet returns the pitch classes of the scale.
func (s Scale) PitchSet() note.PitchSet {
	return note.SetOf(s.Notes()...)
}

// Contains reports whether n's pitch class belongs to the scale.
func (s Scale) Contains(n note.Note) bool {
	return Contains(s, n)
}

// Degree returns the degree whose pitch class matches n.
func (s Scale) Degree(n note.Note) (Degree, bool) {
	for _, d := range s.Degrees {
		if d.Note.SamePitchClass(n) {
			return d, true
		}
	}
	return Degree{}, false
}

// Contains reports whether n's pitch class belongs to s. Octaves are ignored.
func Contains(s Scale, n note.Note) bool {
	for _, d := range s.Degrees {
		if d.Note.SamePitchClass(n) {
			return true
		}
	}
	return false
}

// abbreviation names a degree relative to the major scale for seven-note
// scales ("b3", "#4") and by plain interval otherwise.
func abbreviation(number, semis, size int) string {
	if number == 1 {
		return "R"
	}
	if size != 7 {
		return note.IntervalAbbrev(semis)
	}
	diff := semis%12 - majorSteps[number-1]
	switch {
	case diff < 0:
		return fmt.Sprintf("%s%d", strings.Repeat("b", -diff), number)
	case diff > 0:
		return fmt.Sprintf("%s%d", strings.Repeat("#", diff), number)
	}
	return fmt.Sprintf("%d", number)
}

// spell respells notes so that seven-note scales use distinct letters where
// the 17 canonical names allow it. The root keeps its spelling.
func spell(notes []note.Note, root note.Note) []note.Note {
	if len(notes) != 7 {
		return notes
	}
	prefs := []note.Preference{root.Preference()}
	if prefs[0] == note.PreferSharp {
		prefs = append(prefs, note.PreferFlat)
	} else {
		prefs = append(prefs, note.PreferSharp)
	}

	best, bestLetters := notes, -1
	for _, pref := range prefs {
		candidate := make([]note.Note, len(notes))
		candidate[0] = root
		for i := 1; i < len(notes); i++ {
			candidate[i] = notes[i].Respell(pref)
		}
		if letters := distinctLetters(candidate); letters > bestLetters {
			best, bestLetters = candidate, letters
		}
	}
	return best
}

func distinctLetters(notes []note.Note) int {
	seen := make(map[byte]bool, len(notes))
	for _, n := range notes {
		seen[n.Name.String()[0]] = true
	}
	return len(seen)
}
