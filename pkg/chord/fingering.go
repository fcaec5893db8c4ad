package chord

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

// Muted marks a string that is not played in a [Position].
const Muted = -1

// Search defaults.
const (
	DefaultMaxSpan       = 4
	DefaultMaxCandidates = 512
	DefaultLimit         = 5
	maxFingers           = 4
	maxSearchSpan        = 6
)

// Search bounds a fingering search. The zero value searches the open
// position with the defaults above and requires the root in the bass.
type Search struct {
	// MaxSpan is the width of the fret window above StartFret.
	MaxSpan int `json:"maxSpan"`
	// StartFret is the lowest fret of the window. Open strings are only
	// available when it is 0.
	StartFret int `json:"startFret"`
	// MaxFret clips the window at the end of the neck.
	MaxFret int `json:"maxFret"`
	// MaxCandidates stops enumeration once this many valid shapes are found.
	MaxCandidates int `json:"maxCandidates"`
	// Limit is the number of ranked positions returned.
	Limit int `json:"limit"`
	// AllowInversions lets a chord tone other than the root sound lowest.
	AllowInversions bool `json:"allowInversions"`
}

// WithDefaults fills zero fields with the package defaults.
func (s Search) WithDefaults() Search {
	if s.MaxSpan == 0 {
		s.MaxSpan = DefaultMaxSpan
	}
	if s.MaxFret == 0 {
		s.MaxFret = errors.DefaultMaxFret
	}
	if s.MaxCandidates == 0 {
		s.MaxCandidates = DefaultMaxCandidates
	}
	if s.Limit == 0 {
		s.Limit = DefaultLimit
	}
	return s
}

// Validate checks the search bounds after defaults are applied.
func (s Search) Validate() error {
	if s.MaxSpan < 1 || s.MaxSpan > maxSearchSpan {
		return errors.New(errors.ErrCodeInvalidInput, "max span %d out of range 1-%d", s.MaxSpan, maxSearchSpan)
	}
	if s.StartFret < 0 || s.StartFret > s.MaxFret {
		return errors.New(errors.ErrCodeOutOfRange, "start fret %d out of range 0-%d", s.StartFret, s.MaxFret)
	}
	if s.MaxCandidates < 1 || s.Limit < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "candidate and result limits must be positive")
	}
	return nil
}

// Voicing describes how the sounding notes of a position are spread.
type Voicing uint8

const (
	VoicingOpen Voicing = iota
	VoicingClosed
	VoicingSpread
	VoicingCluster
)

var voicingNames = [...]string{"open", "closed", "spread", "cluster"}

func (v Voicing) String() string {
	if int(v) < len(voicingNames) {
		return voicingNames[v]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (v Voicing) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Voicing) UnmarshalText(text []byte) error {
	i := slices.Index(voicingNames[:], string(text))
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown voicing %q", string(text))
	}
	*v = Voicing(i)
	return nil
}

// Position is one playable shape of a chord. Slices are indexed by string,
// lowest-pitched string first.
type Position struct {
	Name      string  `json:"name"`
	StartFret int     `json:"startFret"`
	Frets     []int   `json:"frets"`
	Fingers   []int   `json:"fingers"`
	Muted     []bool  `json:"muted"`
	Barre     int     `json:"barre,omitempty"`
	Voicing   Voicing `json:"voicing"`
}

// MutedCount returns the number of unplayed strings.
func (p Position) MutedCount() int {
	n := 0
	for _, m := range p.Muted {
		if m {
			n++
		}
	}
	return n
}

// Span returns the distance between the highest and lowest fretted notes.
// Open strings do not count.
func (p Position) Span() int {
	lo, hi := 0, 0
	for _, f := range p.Frets {
		if f <= 0 {
			continue
		}
		if lo == 0 || f < lo {
			lo = f
		}
		hi = max(hi, f)
	}
	return hi - lo
}

// FingerCount returns the number of distinct fingers in use.
func (p Position) FingerCount() int {
	var used [maxFingers + 1]bool
	n := 0
	for _, f := range p.Fingers {
		if f > 0 && !used[f] {
			used[f] = true
			n++
		}
	}
	return n
}

// String renders the shape in tab shorthand, e.g. "x32010". Shapes that
// reach fret 10 or above are dash-separated.
func (p Position) String() string {
	parts := make([]string, len(p.Frets))
	wide := false
	for i, f := range p.Frets {
		if f == Muted {
			parts[i] = "x"
			continue
		}
		parts[i] = strconv.Itoa(f)
		wide = wide || f > 9
	}
	if wide {
		return strings.Join(parts, "-")
	}
	return strings.Join(parts, "")
}

// choice is one option for a single string.
type choice struct {
	fret   int
	chroma int
}

// FindFingerings searches the fret window described by s for shapes that
// sound every required chord tone on the given open strings. Results are
// ranked by fewest muted strings, lowest starting fret, root in the bass,
// narrowest span, fewest fingers and finally the fret tuple.
//
// When the chord has more tones than there are strings the unaltered fifth
// is optional. If nothing fits the error has code NO_FINGERING_FOUND.
func FindFingerings(tones []Tone, openStrings []note.Note, s Search) ([]Position, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(tones) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chord has no tones")
	}
	if len(openStrings) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "instrument has no strings")
	}

	required, rootChroma, hasRoot := requiredTones(tones, len(openStrings))
	all := note.PitchSet(0)
	for _, t := range tones {
		all = all.Add(t.Note.Chroma())
	}

	hi := min(s.StartFret+s.MaxSpan, s.MaxFret)
	choices := make([][]choice, len(openStrings))
	for i, open := range openStrings {
		for f := s.StartFret; f <= hi; f++ {
			c := (open.Chroma() + f) % 12
			if all.Has(c) {
				choices[i] = append(choices[i], choice{fret: f, chroma: c})
			}
		}
		choices[i] = append(choices[i], choice{fret: Muted, chroma: -1})
	}

	var found []Position
	idx := make([]int, len(openStrings))
	frets := make([]int, len(openStrings))
	for len(found) < s.MaxCandidates {
		sounding := note.PitchSet(0)
		bass := -1
		for i, ci := range idx {
			ch := choices[i][ci]
			frets[i] = ch.fret
			if ch.fret == Muted {
				continue
			}
			sounding = sounding.Add(ch.chroma)
			if bass < 0 {
				bass = ch.chroma
			}
		}
		rootOK := s.AllowInversions || !hasRoot || bass == rootChroma
		if rootOK && sounding&required == required {
			if p, ok := shape(frets, openStrings); ok {
				found = append(found, p)
			}
		}
		if !advance(idx, choices) {
			break
		}
	}

	if len(found) == 0 {
		return nil, errors.New(errors.ErrCodeNoFingeringFound,
			"no fingering within frets %d-%d", s.StartFret, hi)
	}

	slices.SortFunc(found, func(a, b Position) int {
		return cmp.Or(
			cmp.Compare(a.MutedCount(), b.MutedCount()),
			cmp.Compare(a.StartFret, b.StartFret),
			compareBool(bassIs(b, openStrings, rootChroma), bassIs(a, openStrings, rootChroma)),
			cmp.Compare(a.Span(), b.Span()),
			cmp.Compare(a.FingerCount(), b.FingerCount()),
			slices.Compare(a.Frets, b.Frets),
		)
	})
	if len(found) > s.Limit {
		found = found[:s.Limit]
	}
	return found, nil
}

// WithFingerings searches positions for c on the given open strings and
// returns a copy carrying them along with the derived difficulty.
func WithFingerings(c Chord, openStrings []note.Note, s Search) (Chord, error) {
	positions, err := FindFingerings(c.Tones, openStrings, s)
	if err != nil {
		return c, err
	}
	c.Positions = positions
	c.Difficulty = rate(c)
	return c, nil
}

// advance steps the odometer; the highest string turns fastest.
func advance(idx []int, choices [][]choice) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(choices[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}

func requiredTones(tones []Tone, stringCount int) (set note.PitchSet, root int, hasRoot bool) {
	for _, t := range tones {
		set = set.Add(t.Note.Chroma())
		if t.Function == FunctionRoot {
			root, hasRoot = t.Note.Chroma(), true
		}
	}
	if set.Len() > stringCount {
		for _, t := range tones {
			if t.Function == FunctionFifth && t.Semitones == 7 {
				set = set.Remove(t.Note.Chroma())
			}
		}
	}
	return set, root, hasRoot
}

// shape assigns fingers to a fret tuple and reports whether the result can
// be held with one hand.
func shape(frets []int, openStrings []note.Note) (Position, bool) {
	p := Position{
		Frets:   slices.Clone(frets),
		Fingers: make([]int, len(frets)),
		Muted:   make([]bool, len(frets)),
	}

	type press struct{ str, fret int }
	var pressed []press
	hasOpen := false
	for i, f := range frets {
		switch {
		case f == Muted:
			p.Muted[i] = true
		case f == 0:
			hasOpen = true
		default:
			pressed = append(pressed, press{i, f})
		}
	}
	if p.MutedCount() == len(frets) {
		return Position{}, false
	}

	if len(pressed) > 0 {
		slices.SortFunc(pressed, func(a, b press) int {
			return cmp.Or(cmp.Compare(a.fret, b.fret), cmp.Compare(a.str, b.str))
		})
		lowest := pressed[0].fret
		atLowest := 0
		for _, pr := range pressed {
			if pr.fret == lowest {
				atLowest++
			}
		}
		// A barre would stop any open string, so open shapes never barre.
		if atLowest >= 2 && !hasOpen {
			p.Barre = lowest
		}

		next := 1
		for _, pr := range pressed {
			if p.Barre > 0 && pr.fret == p.Barre {
				p.Fingers[pr.str] = 1
				next = 2
				continue
			}
			finger := max(next, pr.fret-lowest+1)
			if finger > maxFingers {
				return Position{}, false
			}
			p.Fingers[pr.str] = finger
			next = finger + 1
		}
	}

	p.StartFret = startFret(frets)
	p.Voicing = voicing(frets, openStrings)
	switch {
	case hasOpen:
		p.Name = "Open"
	case p.Barre > 0:
		p.Name = fmt.Sprintf("Barre at fret %d", p.Barre)
	default:
		p.Name = fmt.Sprintf("Position %d", p.StartFret)
	}
	return p, true
}

func startFret(frets []int) int {
	lo := -1
	for _, f := range frets {
		if f != Muted && (lo < 0 || f < lo) {
			lo = f
		}
	}
	return max(lo, 0)
}

func voicing(frets []int, openStrings []note.Note) Voicing {
	var pitches []int
	for i, f := range frets {
		switch {
		case f == 0:
			return VoicingOpen
		case f > 0:
			pitches = append(pitches, openStrings[i].MIDI()+f)
		}
	}
	slices.Sort(pitches)
	for i := 1; i < len(pitches); i++ {
		if pitches[i]-pitches[i-1] <= 2 {
			return VoicingCluster
		}
	}
	if len(pitches) > 0 && pitches[len(pitches)-1]-pitches[0] <= 12 {
		return VoicingClosed
	}
	return VoicingSpread
}

func bassIs(p Position, openStrings []note.Note, chroma int) bool {
	for i, f := range p.Frets {
		if f != Muted {
			return (openStrings[i].Chroma()+f)%12 == chroma
		}
	}
	return false
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}
