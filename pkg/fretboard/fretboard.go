// Package fretboard maps a tuning and an optional scale or chord onto a
// grid of annotated frets.
//
// [Compute] is a pure function of its [Config]: every string of the tuning
// is walked over the requested fret range, each fret's note is derived from
// the open string, and [Resolve] picks a single highlight label from the
// categories that claim it. Interactive state (selection, hover, pressed
// frets) is copied from the config and never inferred.
package fretboard

import (
	"slices"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// Naming selects how fret notes are spelled.
type Naming uint8

const (
	// NamingMixed spells notes the way the active scale or chord does and
	// falls back to sharps.
	NamingMixed Naming = iota
	NamingSharps
	NamingFlats
)

var namingNames = [...]string{"mixed", "sharps", "flats"}

func (n Naming) String() string {
	if int(n) < len(namingNames) {
		return namingNames[n]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (n Naming) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Naming) UnmarshalText(text []byte) error {
	parsed, err := ParseNaming(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNaming accepts "mixed", "sharps" or "flats".
func ParseNaming(s string) (Naming, error) {
	i := slices.Index(namingNames[:], s)
	if i < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown naming convention %q (want mixed, sharps or flats)", s)
	}
	return Naming(i), nil
}

// ColorScheme is a rendering hint carried with the board.
type ColorScheme uint8

const (
	SchemeDefault ColorScheme = iota
	SchemeColorBlind
	SchemeDark
	SchemeLight
)

var schemeNames = [...]string{"default", "colorBlind", "dark", "light"}

func (c ColorScheme) String() string {
	if int(c) < len(schemeNames) {
		return schemeNames[c]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorScheme) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColorScheme) UnmarshalText(text []byte) error {
	parsed, err := ParseColorScheme(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColorScheme accepts "default", "colorBlind", "dark" or "light".
func ParseColorScheme(s string) (ColorScheme, error) {
	i := slices.Index(schemeNames[:], s)
	if i < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown color scheme %q", s)
	}
	return ColorScheme(i), nil
}

// Display holds presentation toggles. They do not change the computed
// grid; renderers read them.
type Display struct {
	ShowNoteNames     bool        `json:"showNoteNames"`
	ShowIntervals     bool        `json:"showIntervals"`
	ShowFingers       bool        `json:"showFingerNumbers"`
	ShowFretNumbers   bool        `json:"showFretNumbers"`
	ShowStringNumbers bool        `json:"showStringNumbers"`
	ColorScheme       ColorScheme `json:"colorScheme"`
	Naming            Naming      `json:"namingConvention"`
}

// DefaultDisplay shows note names and fret numbers.
func DefaultDisplay() Display {
	return Display{ShowNoteNames: true, ShowFretNumbers: true}
}

// Coord addresses one fret. String uses guitar numbering: the highest
// string is 1.
type Coord struct {
	String int `json:"string"`
	Fret   int `json:"fret"`
}

// Config is the complete input of [Compute].
type Config struct {
	Tuning    tuning.Name
	StartFret int
	EndFret   int
	// MaxFret bounds EndFret; 0 means 24.
	MaxFret int
	// Source is the active scale or chord; nil means none.
	Source Source
	// Root enables interval highlighting when Source is none. It is
	// ignored otherwise since scales and chords carry their own root.
	Root     *note.Note
	Selected note.PitchSet
	Hovered  *Coord
	Pressed  []Coord
	Display  Display
}

// Fret is one cell of the board.
type Fret struct {
	Position   int           `json:"position"`
	Note       note.Note     `json:"note"`
	Highlight  HighlightType `json:"highlightType"`
	Interval   string        `json:"interval,omitempty"`
	Finger     int           `json:"fingerNumber,omitempty"`
	IsMuted    bool          `json:"isMuted"`
	IsSelected bool          `json:"isSelected"`
	IsPressed  bool          `json:"isPressed"`
	IsHovered  bool          `json:"isHovered"`
}

// GuitarString is one string of the board with the frets in range.
type GuitarString struct {
	Number   int       `json:"stringNumber"`
	OpenNote note.Note `json:"openNote"`
	Muted    bool      `json:"muted"`
	Frets    []Fret    `json:"frets"`
}

// Fretboard is the computed grid. Strings are ordered from the lowest
// pitch to the highest.
type Fretboard struct {
	Strings   []GuitarString
	Tuning    tuning.Name
	StartFret int
	EndFret   int
	Source    Source
	// Root is the active root: the source's own root, or Config.Root when
	// there is no source.
	Root     *note.Note
	Selected note.PitchSet
	Hovered  *Coord
	Display  Display
}

// Compute builds the fretboard described by cfg. It fails with
// OUT_OF_RANGE for an invalid fret range and UNKNOWN_TUNING for an
// unregistered tuning.
func Compute(cfg Config) (Fretboard, error) {
	maxFret := cfg.MaxFret
	if maxFret <= 0 {
		maxFret = errors.DefaultMaxFret
	}
	if err := errors.ValidateFretRange(cfg.StartFret, cfg.EndFret, maxFret); err != nil {
		return Fretboard{}, err
	}
	opens, err := tuning.StringNotes(cfg.Tuning)
	if err != nil {
		return Fretboard{}, err
	}
	src := cfg.Source
	if src == nil {
		src = NoSource{}
	}
	var pos *chord.Position
	if cs, ok := src.(ChordSource); ok && cs.Position != nil {
		if len(cs.Position.Frets) != len(opens) {
			return Fretboard{}, errors.New(errors.ErrCodeInvalidInput,
				"chord position covers %d strings, tuning has %d", len(cs.Position.Frets), len(opens))
		}
		// Fingers and Muted may be omitted, but not partially given.
		if n := len(cs.Position.Fingers); n != 0 && n != len(opens) {
			return Fretboard{}, errors.New(errors.ErrCodeInvalidInput,
				"chord position has %d finger numbers for %d strings", n, len(opens))
		}
		if n := len(cs.Position.Muted); n != 0 && n != len(opens) {
			return Fretboard{}, errors.New(errors.ErrCodeInvalidInput,
				"chord position has %d muted flags for %d strings", n, len(opens))
		}
		pos = cs.Position
	}

	m := newMembership(src, cfg.Root)
	fb := Fretboard{
		Strings:   make([]GuitarString, len(opens)),
		Tuning:    cfg.Tuning,
		StartFret: cfg.StartFret,
		EndFret:   cfg.EndFret,
		Source:    src,
		Root:      m.root,
		Selected:  cfg.Selected,
		Hovered:   cfg.Hovered,
		Display:   cfg.Display,
	}

	for i, open := range opens {
		number := len(opens) - i
		gs := GuitarString{
			Number:   number,
			OpenNote: open,
			Muted:    pos != nil && pos.Frets[i] == chord.Muted,
			Frets:    make([]Fret, 0, cfg.EndFret-cfg.StartFret+1),
		}
		for f := cfg.StartFret; f <= cfg.EndFret; f++ {
			n := spell(note.AddInterval(open, f), cfg.Display.Naming, &m)
			at := Coord{String: number, Fret: f}
			fret := Fret{
				Position:   f,
				Note:       n,
				Highlight:  Resolve(m.candidates(n)),
				Interval:   m.interval(n),
				IsMuted:    gs.Muted,
				IsSelected: cfg.Selected.Has(n.Chroma()),
				IsPressed:  slices.Contains(cfg.Pressed, at),
				IsHovered:  cfg.Hovered != nil && *cfg.Hovered == at,
			}
			if pos != nil && len(pos.Fingers) > 0 && f > 0 && pos.Frets[i] == f {
				fret.Finger = pos.Fingers[i]
			}
			gs.Frets = append(gs.Frets, fret)
		}
		fb.Strings[i] = gs
	}
	return fb, nil
}

func spell(n note.Note, naming Naming, m *membership) note.Note {
	switch naming {
	case NamingSharps:
		return n.Respell(note.PreferSharp)
	case NamingFlats:
		return n.Respell(note.PreferFlat)
	}
	if c := n.Chroma(); m.spelled.Has(c) {
		n.Name = m.spelling[c]
	}
	return n
}

// StringAt returns the string with guitar number (1 = highest).
func (fb Fretboard) StringAt(number int) (GuitarString, bool) {
	i := len(fb.Strings) - number
	if number < 1 || i < 0 {
		return GuitarString{}, false
	}
	return fb.Strings[i], true
}

// FretAt returns the cell at c.
func (fb Fretboard) FretAt(c Coord) (Fret, bool) {
	gs, ok := fb.StringAt(c.String)
	if !ok || c.Fret < fb.StartFret || c.Fret > fb.EndFret {
		return Fret{}, false
	}
	return gs.Frets[c.Fret-fb.StartFret], true
}

// Highlighted returns the coordinates labeled h, lowest string first.
func (fb Fretboard) Highlighted(h HighlightType) []Coord {
	var out []Coord
	for _, gs := range fb.Strings {
		for _, f := range gs.Frets {
			if f.Highlight == h {
				out = append(out, Coord{String: gs.Number, Fret: f.Position})
			}
		}
	}
	return out
}

// Kind reports the active highlight source.
func (fb Fretboard) Kind() SourceKind {
	if fb.Source == nil {
		return SourceNone
	}
	return fb.Source.Kind()
}
