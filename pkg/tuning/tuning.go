// Package tuning holds the registry of built-in guitar tunings and derives
// the open-string notes of each one.
//
// A tuning is defined by the note of its lowest string and the semitone
// gaps between adjacent strings. String notes are always derived from that
// definition, never stored, so a tuning cannot drift out of sync with its
// intervals.
package tuning

import (
	"slices"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

// Name identifies a built-in tuning.
type Name uint8

const (
	Standard Name = iota
	DropD
	DADGAD
	OpenG
	OpenD
	OpenE
	OpenA
	OpenC
	OpenF

	nameCount
)

// DefaultOctave is the octave of the lowest string when none is given.
const DefaultOctave = 2

type definition struct {
	label     string
	aliases   []string
	root      note.Name
	intervals []int
	genres    []string
	favorable []string
	famous    []FamousUse
}

var definitions = [nameCount]definition{
	Standard: {
		label:     "Standard",
		aliases:   []string{"E Standard", "EADGBE"},
		root:      note.E,
		intervals: []int{5, 5, 5, 4, 5},
		genres:    []string{"rock", "pop", "blues", "jazz", "metal", "folk"},
		favorable: []string{"C", "G", "D", "A", "E", "Am", "Em", "Dm"},
		famous:    []FamousUse{{"Led Zeppelin", "Stairway to Heaven"}, {"Eagles", "Hotel California"}},
	},
	DropD: {
		label:     "Drop D",
		aliases:   []string{"DADGBE"},
		root:      note.D,
		intervals: []int{7, 5, 5, 4, 5},
		genres:    []string{"rock", "metal", "grunge", "folk"},
		favorable: []string{"D", "D5", "G", "A", "Dm"},
		famous:    []FamousUse{{"Foo Fighters", "Everlong"}, {"Rage Against the Machine", "Killing in the Name"}, {"The Beatles", "Dear Prudence"}},
	},
	DADGAD: {
		label:     "DADGAD",
		aliases:   []string{"D Modal", "Celtic"},
		root:      note.D,
		intervals: []int{7, 5, 5, 2, 5},
		genres:    []string{"celtic", "folk", "acoustic"},
		favorable: []string{"Dsus4", "D5", "G", "Asus4", "Em7"},
		famous:    []FamousUse{{"Led Zeppelin", "Kashmir"}, {"Davey Graham", "She Moved Through the Fair"}},
	},
	OpenG: {
		label:     "Open G",
		aliases:   []string{"DGDGBD", "Spanish"},
		root:      note.D,
		intervals: []int{5, 7, 5, 4, 3},
		genres:    []string{"blues", "slide", "rock", "folk"},
		favorable: []string{"G", "C", "D", "Em"},
		famous:    []FamousUse{{"The Rolling Stones", "Brown Sugar"}, {"The Rolling Stones", "Honky Tonk Women"}},
	},
	OpenD: {
		label:     "Open D",
		aliases:   []string{"DADF#AD", "Vestapol"},
		root:      note.D,
		intervals: []int{7, 5, 4, 3, 5},
		genres:    []string{"blues", "slide", "folk"},
		favorable: []string{"D", "G", "A", "Bm"},
		famous:    []FamousUse{{"Elmore James", "Dust My Broom"}},
	},
	OpenE: {
		label:     "Open E",
		aliases:   []string{"EBEG#BE"},
		root:      note.E,
		intervals: []int{7, 5, 4, 3, 5},
		genres:    []string{"blues", "slide", "rock"},
		favorable: []string{"E", "A", "B", "C#m"},
		famous:    []FamousUse{{"The Allman Brothers Band", "Statesboro Blues"}, {"The Black Crowes", "Jealous Again"}},
	},
	OpenA: {
		label:     "Open A",
		aliases:   []string{"EAEAC#E"},
		root:      note.E,
		intervals: []int{5, 7, 5, 4, 3},
		genres:    []string{"blues", "slide"},
		favorable: []string{"A", "D", "E", "F#m"},
		famous:    []FamousUse{{"Led Zeppelin", "In My Time of Dying"}},
	},
	OpenC: {
		label:     "Open C",
		aliases:   []string{"CGCGCE"},
		root:      note.C,
		intervals: []int{7, 5, 7, 5, 4},
		genres:    []string{"folk", "ambient", "acoustic"},
		favorable: []string{"C", "F", "G", "Am"},
		famous:    []FamousUse{{"Devin Townsend Project", "Kingdom"}},
	},
	OpenF: {
		label:     "Open F",
		aliases:   []string{"CFCFAC"},
		root:      note.C,
		intervals: []int{5, 7, 5, 4, 3},
		genres:    []string{"folk", "blues"},
		favorable: []string{"F", "Bb", "C", "Dm"},
	},
}

// FamousUse is a well-known recording in a tuning.
type FamousUse struct {
	Artist string `json:"artist"`
	Song   string `json:"song"`
}

// Step is the adjustment of one string relative to Standard tuning.
type Step struct {
	String    int       `json:"stringNumber"`
	Direction string    `json:"direction"`
	Semitones int       `json:"semitones"`
	Target    note.Note `json:"targetNote"`
}

// Tuning is a fully resolved registry entry.
type Tuning struct {
	Name            Name        `json:"name"`
	Aliases         []string    `json:"aliases"`
	Root            note.Note   `json:"root"`
	StringIntervals []int       `json:"stringIntervals"`
	StringNotes     []note.Note `json:"stringNotes"`
	Genres          []string    `json:"genres"`
	FavorableChords []string    `json:"favorableChords"`
	FamousUses      []FamousUse `json:"famousUses,omitempty"`
	Steps           []Step      `json:"tuningSteps,omitempty"`
}

// StringCount returns the number of strings.
func (t Tuning) StringCount() int { return len(t.StringNotes) }

// Names returns every registered tuning in declaration order.
func Names() []Name {
	out := make([]Name, 0, nameCount)
	for n := Standard; n < nameCount; n++ {
		out = append(out, n)
	}
	return out
}

// Valid reports whether n is a registered tuning.
func (n Name) Valid() bool { return n < nameCount }

func (n Name) String() string {
	if !n.Valid() {
		return "unknown"
	}
	return definitions[n].label
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, unknown(n)
	}
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Parse resolves a tuning by label or alias. Matching ignores case,
// spaces, dashes and underscores, so "drop-d" and "DropD" both work.
func Parse(s string) (Name, error) {
	key := normalize(s)
	if key != "" {
		for n := Standard; n < nameCount; n++ {
			def := definitions[n]
			if normalize(def.label) == key {
				return n, nil
			}
			for _, alias := range def.aliases {
				if normalize(alias) == key {
					return n, nil
				}
			}
		}
	}
	return 0, errors.New(errors.ErrCodeUnknownTuning, "unknown tuning %q", s)
}

// StringNotes returns the open-string notes of the tuning, lowest string
// first, with the lowest string in DefaultOctave.
func StringNotes(name Name) ([]note.Note, error) {
	return StringNotesAt(name, DefaultOctave)
}

// StringNotesAt is StringNotes with the lowest string placed in octave.
func StringNotesAt(name Name, octave int) ([]note.Note, error) {
	if !name.Valid() {
		return nil, unknown(name)
	}
	if err := errors.ValidateOctave(octave); err != nil {
		return nil, err
	}
	def := definitions[name]
	cur := note.New(def.root, octave)
	notes := make([]note.Note, 0, len(def.intervals)+1)
	notes = append(notes, cur)
	for _, gap := range def.intervals {
		cur = note.AddInterval(cur, gap)
		notes = append(notes, cur)
	}
	return notes, nil
}

// Get returns the registry entry for name with derived string notes and
// the steps needed to reach it from Standard.
func Get(name Name) (Tuning, error) {
	notes, err := StringNotes(name)
	if err != nil {
		return Tuning{}, err
	}
	def := definitions[name]
	t := Tuning{
		Name:            name,
		Aliases:         slices.Clone(def.aliases),
		Root:            notes[0],
		StringIntervals: slices.Clone(def.intervals),
		StringNotes:     notes,
		Genres:          slices.Clone(def.genres),
		FavorableChords: slices.Clone(def.favorable),
		FamousUses:      slices.Clone(def.famous),
	}
	if name != Standard {
		standard, _ := StringNotes(Standard)
		t.Steps = steps(standard, notes)
	}
	return t, nil
}

// MustGet is like Get but panics on error.
func MustGet(name Name) Tuning {
	t, err := Get(name)
	if err != nil {
		panic(err)
	}
	return t
}

// All returns every registered tuning in declaration order.
func All() []Tuning {
	out := make([]Tuning, 0, nameCount)
	for _, n := range Names() {
		out = append(out, MustGet(n))
	}
	return out
}

// steps lists the strings that differ from standard. Strings are numbered
// guitar-style, so the highest string is 1.
func steps(standard, target []note.Note) []Step {
	if len(standard) != len(target) {
		return nil
	}
	var out []Step
	for i := range target {
		diff := target[i].MIDI() - standard[i].MIDI()
		if diff == 0 {
			continue
		}
		dir := "up"
		if diff < 0 {
			dir, diff = "down", -diff
		}
		out = append(out, Step{
			String:    len(target) - i,
			Direction: dir,
			Semitones: diff,
			Target:    target[i],
		})
	}
	return out
}

func unknown(n Name) error {
	return errors.New(errors.ErrCodeUnknownTuning, "unknown tuning %d", uint8(n))
}

func normalize(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}
