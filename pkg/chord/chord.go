// Package chord builds chords from a root, a quality and optional
// extensions or alterations, and searches for playable fingerings on a
// fretted instrument.
//
// Chord tones are computed as semitone offsets from the root. Each tone
// carries its scale degree and a function label (root, third, fifth,
// seventh, extension or tension) so that callers can color or describe
// it without re-deriving the harmony.
package chord

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

// Function classifies a chord tone by its harmonic role.
type Function uint8

const (
	FunctionRoot Function = iota
	FunctionThird
	FunctionFifth
	FunctionSeventh
	FunctionExtension
	FunctionTension
)

var functionNames = [...]string{"root", "third", "fifth", "seventh", "extension", "tension"}

func (f Function) String() string {
	if int(f) < len(functionNames) {
		return functionNames[f]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (f Function) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Function) UnmarshalText(text []byte) error {
	for i, name := range functionNames {
		if name == string(text) {
			*f = Function(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown chord function %q", string(text))
}

// Tone is one member of a chord.
type Tone struct {
	Note      note.Note `json:"note"`
	Degree    int       `json:"degree"`
	Label     string    `json:"label"`
	Semitones int       `json:"intervalFromRoot"`
	Interval  string    `json:"interval"`
	Function  Function  `json:"function"`
}

// Chord is a fully built chord. Positions is empty until fingerings are
// attached with [WithFingerings].
type Chord struct {
	Root        note.Note    `json:"root"`
	Quality     Quality      `json:"quality"`
	Extensions  []Extension  `json:"extensions,omitempty"`
	Alterations []Alteration `json:"alterations,omitempty"`
	Tones       []Tone       `json:"tones"`
	Positions   []Position   `json:"positions,omitempty"`
	Difficulty  Difficulty   `json:"difficulty"`

	CommonProgressions []string `json:"commonProgressions,omitempty"`
}

// Difficulty grades how hard a chord is to play.
type Difficulty uint8

const (
	Beginner Difficulty = iota
	Intermediate
	Advanced
)

var difficultyNames = [...]string{"beginner", "intermediate", "advanced"}

func (d Difficulty) String() string {
	if int(d) < len(difficultyNames) {
		return difficultyNames[d]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	i := slices.Index(difficultyNames[:], string(text))
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown difficulty %q", string(text))
	}
	*d = Difficulty(i)
	return nil
}

// rate scores the chord from its tone count and, when known, its
// best-ranked position.
func rate(c Chord) Difficulty {
	score := 0
	if len(c.Tones) > 4 {
		score++
	}
	if len(c.Positions) > 0 {
		p := c.Positions[0]
		if p.Barre > 0 {
			score++
		}
		if p.Span() >= 3 {
			score++
		}
		if innerMute(p) {
			score++
		}
	} else if len(c.Tones) > 3 {
		score++
	}
	return Difficulty(min(score, int(Advanced)))
}

// innerMute reports whether a muted string sits between played strings.
func innerMute(p Position) bool {
	first, last := -1, -1
	for i, m := range p.Muted {
		if !m {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	for i := first + 1; i < last; i++ {
		if p.Muted[i] {
			return true
		}
	}
	return false
}

// member is a tone under construction.
type member struct {
	step
	altered bool
}

// BuildTones returns the tones of a chord in ascending order of distance
// from the root. Alterations replace the unaltered tone of the same degree;
// extensions add a degree the quality lacks.
func BuildTones(root note.Note, q Quality, exts []Extension, alts []Alteration) ([]Tone, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}
	if !q.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid chord quality %d", uint8(q))
	}

	members := make([]member, 0, 7)
	for _, s := range qualities[q].steps {
		members = append(members, member{step: s})
	}
	for _, e := range exts {
		if !e.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid extension %d", uint8(e))
		}
		s := extensions[e]
		if !slices.ContainsFunc(members, func(m member) bool { return m.degree == s.degree }) {
			members = append(members, member{step: s})
		}
	}
	for _, a := range alts {
		if !a.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid alteration %d", uint8(a))
		}
		s := alterations[a].step
		members = slices.DeleteFunc(members, func(m member) bool {
			return m.degree == s.degree && !m.altered
		})
		members = append(members, member{step: s, altered: true})
	}

	slices.SortStableFunc(members, func(a, b member) int { return a.semitones - b.semitones })
	members = slices.CompactFunc(members, func(a, b member) bool { return a.semitones == b.semitones })

	tones := make([]Tone, len(members))
	for i, m := range members {
		label := degreeLabel(m.degree, m.semitones)
		tones[i] = Tone{
			Note:      note.Transpose(root, m.semitones, spelling(root, label)),
			Degree:    m.degree,
			Label:     label,
			Semitones: m.semitones,
			Interval:  intervalName(m.degree, m.semitones),
			Function:  function(m.degree, m.altered),
		}
	}
	return tones, nil
}

// Build returns the chord with its tones. Positions are not searched; see
// [WithFingerings].
func Build(root note.Note, q Quality, exts []Extension, alts []Alteration) (Chord, error) {
	tones, err := BuildTones(root, q, exts, alts)
	if err != nil {
		return Chord{}, err
	}
	c := Chord{
		Root:        root,
		Quality:     q,
		Extensions:  slices.Clone(exts),
		Alterations: slices.Clone(alts),
		Tones:       tones,
	}
	c.Difficulty = rate(c)
	c.CommonProgressions = c.Quality.Progressions()
	return c, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(root note.Note, q Quality, exts []Extension, alts []Alteration) Chord {
	c, err := Build(root, q, exts, alts)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a chord from a symbol such as "C", "F#m7", "Bbmaj7" or
// "Em7b5". Only the root and quality are read from the symbol.
func Parse(symbol string) (Chord, error) {
	if err := errors.ValidateName("chord symbol", symbol); err != nil {
		return Chord{}, err
	}
	s := strings.TrimSpace(symbol)
	// Root is a letter plus an optional accidental.
	n := 1
	if len(s) > 1 && strings.ContainsAny(s[1:2], "#b") {
		n = 2
	} else if strings.HasPrefix(s[1:], "♯") || strings.HasPrefix(s[1:], "♭") {
		n = 1 + len("♯")
	}
	name, err := note.ParseName(s[:n])
	if err != nil {
		return Chord{}, err
	}
	q, err := ParseQuality(s[n:])
	if err != nil {
		return Chord{}, err
	}
	return Build(note.New(name, note.DefaultOctave), q, nil, nil)
}

// Symbol returns the compact chord symbol, e.g. "Cmaj7" or "A7(b9)".
func (c Chord) Symbol() string {
	var sb strings.Builder
	sb.WriteString(c.Root.Name.String())
	sb.WriteString(c.Quality.Suffix())
	if extras := c.extras(true); len(extras) > 0 {
		sb.WriteString("(" + strings.Join(extras, ",") + ")")
	}
	return sb.String()
}

// FullName returns the spelled-out chord name, e.g. "C Major 7th".
func (c Chord) FullName() string {
	name := c.Root.Name.String() + " " + qualityFullName(c.Quality)
	if extras := c.extras(false); len(extras) > 0 {
		name += " (" + strings.Join(extras, ", ") + ")"
	}
	return name
}

func (c Chord) extras(short bool) []string {
	var out []string
	for _, e := range c.Extensions {
		switch {
		case !short:
			out = append(out, "add "+e.String())
		case !c.Quality.IsSeventh() && e != Sixth:
			out = append(out, "add"+e.String())
		default:
			out = append(out, e.String())
		}
	}
	for _, a := range c.Alterations {
		out = append(out, a.String())
	}
	return out
}

func qualityFullName(q Quality) string {
	if !q.Valid() {
		return "unknown"
	}
	return qualities[q].fullName
}

// Notes returns the chord tones' notes in tone order.
func (c Chord) Notes() []note.Note {
	out := make([]note.Note, len(c.Tones))
	for i, t := range c.Tones {
		out[i] = t.Note
	}
	return out
}

// PitchSet returns the pitch classes of the chord.
func (c Chord) PitchSet() note.PitchSet {
	return note.SetOf(c.Notes()...)
}

// Contains reports whether n's pitch class is a chord tone.
func (c Chord) Contains(n note.Note) bool {
	_, ok := c.Tone(n)
	return ok
}

// Tone returns the chord tone sharing n's pitch class.
func (c Chord) Tone(n note.Note) (Tone, bool) {
	for _, t := range c.Tones {
		if t.Note.SamePitchClass(n) {
			return t, true
		}
	}
	return Tone{}, false
}

// IsBarre reports whether the best-ranked position is a barre shape.
func (c Chord) IsBarre() bool {
	return len(c.Positions) > 0 && c.Positions[0].Barre > 0
}

// BarreFret returns the barre fret of the best-ranked position, or 0.
func (c Chord) BarreFret() int {
	if len(c.Positions) == 0 {
		return 0
	}
	return c.Positions[0].Barre
}

func (c Chord) String() string { return c.Symbol() }

func function(degree int, altered bool) Function {
	switch degree {
	case 1:
		return FunctionRoot
	case 3:
		return FunctionThird
	case 5:
		return FunctionFifth
	case 7:
		return FunctionSeventh
	}
	if altered {
		return FunctionTension
	}
	return FunctionExtension
}

// naturalSteps holds the major-scale distance of each degree; perfect
// degrees are flagged.
var naturalSteps = map[int]struct {
	semitones int
	perfect   bool
	ordinal   string
}{
	1:  {0, true, "unison"},
	2:  {2, false, "second"},
	3:  {4, false, "third"},
	4:  {5, true, "fourth"},
	5:  {7, true, "fifth"},
	6:  {9, false, "sixth"},
	7:  {11, false, "seventh"},
	9:  {14, false, "ninth"},
	11: {17, true, "eleventh"},
	13: {21, false, "thirteenth"},
}

func degreeLabel(degree, semitones int) string {
	diff := semitones - naturalSteps[degree].semitones
	switch {
	case diff < 0:
		return strings.Repeat("b", -diff) + fmt.Sprint(degree)
	case diff > 0:
		return strings.Repeat("#", diff) + fmt.Sprint(degree)
	}
	if degree == 1 {
		return "R"
	}
	return fmt.Sprint(degree)
}

func intervalName(degree, semitones int) string {
	nat := naturalSteps[degree]
	if degree == 1 {
		return "root"
	}
	diff := semitones - nat.semitones
	var quality string
	switch {
	case diff > 0:
		quality = "augmented"
	case nat.perfect && diff == 0:
		quality = "perfect"
	case nat.perfect && diff < 0:
		quality = "diminished"
	case diff == 0:
		quality = "major"
	case diff == -1:
		quality = "minor"
	default:
		quality = "diminished"
	}
	return quality + " " + nat.ordinal
}

// spelling picks flats for lowered degrees, sharps for raised ones and the
// root's own preference otherwise.
func spelling(root note.Note, label string) note.Preference {
	switch {
	case strings.HasPrefix(label, "b"):
		return note.PreferFlat
	case strings.HasPrefix(label, "#"):
		return note.PreferSharp
	}
	return root.Preference()
}
