// Package pipeline runs fretboard requests end to end for the CLI and the
// interactive explorer.
//
// A request is a serializable [Options] value. The [Runner] resolves it in
// three stages:
//
//  1. Source: build the scale or chord (with its fingering search)
//  2. Compute: map the tuning and source onto the fretboard
//  3. Render: produce the requested outputs (text, SVG, JSON, MIDI)
//
// The first two stages are memoized through a [cache.Cache] and concurrent
// identical requests are collapsed into one computation.
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Root:    "A",
//	    Scale:   "minor pentatonic",
//	    Formats: []string{"text"},
//	})
//	os.Stdout.Write(res.Artifacts["text"])
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fretboard/pkg/cache"
	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/midi"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/render"
	"github.com/matzehuels/fretboard/pkg/scale"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

const (
	// DefaultEndFret is used when neither fret bound is set.
	DefaultEndFret = 12

	// DefaultMaxFret bounds the end fret.
	DefaultMaxFret = errors.DefaultMaxFret

	// DefaultTuning names the tuning used when none is given.
	DefaultTuning = "standard"
)

// Format constants for output formats.
const (
	FormatText = string(render.FormatText)
	FormatSVG  = string(render.FormatSVG)
	FormatJSON = string(render.FormatJSON)
	FormatMIDI = "midi"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatSVG:  true,
	FormatJSON: true,
	FormatMIDI: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: text, svg, json, midi)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains everything one request needs. It supports JSON so that
// explorer sessions and tests can persist requests.
type Options struct {
	// Board
	Tuning    string `json:"tuning,omitempty"`
	StartFret int    `json:"start_fret,omitempty"`
	EndFret   int    `json:"end_fret,omitempty"`
	MaxFret   int    `json:"max_fret,omitempty"`

	// Source. Scale and Chord are exclusive. With Root set, Chord is a
	// quality ("maj7"); without it, a symbol ("Cmaj7"). Root alone
	// highlights intervals.
	Root        string   `json:"root,omitempty"`
	Scale       string   `json:"scale,omitempty"`
	Chord       string   `json:"chord,omitempty"`
	Extensions  []string `json:"extensions,omitempty"`
	Alterations []string `json:"alterations,omitempty"`
	// Voicing picks a fingering (1-based); 0 highlights every chord tone.
	Voicing int `json:"voicing,omitempty"`

	// Fingering search
	MaxSpan         int  `json:"max_span,omitempty"`
	FingerStartFret int  `json:"finger_start_fret,omitempty"`
	MaxFingerFret   int  `json:"max_finger_fret,omitempty"`
	Limit           int  `json:"limit,omitempty"`
	MaxCandidates   int  `json:"max_candidates,omitempty"`
	AllowInversions bool `json:"allow_inversions,omitempty"`

	// Interaction
	Selected []string          `json:"selected,omitempty"`
	Hover    *fretboard.Coord  `json:"hover,omitempty"`
	Pressed  []fretboard.Coord `json:"pressed,omitempty"`

	// Display defaults to [fretboard.DefaultDisplay] when nil.
	Display *fretboard.Display `json:"display,omitempty"`

	// Output
	Formats []string     `json:"formats,omitempty"`
	MIDI    midi.Options `json:"midi"`
	Refresh bool         `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger    `json:"-"`
	Render render.Options `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
	resolved  resolved
}

// resolved holds the typed values parsed from the string fields.
type resolved struct {
	tuning      tuning.Name
	root        *note.Note
	scale       scale.Type
	quality     chord.Quality
	extensions  []chord.Extension
	alterations []chord.Alteration
	selected    note.PitchSet
	search      chord.Search
	display     fretboard.Display
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Fretboard fretboard.Fretboard

	// Scale or Chord is set according to the request's source.
	Scale *scale.Scale
	Chord *chord.Chord

	// Position is the displayed voicing when Voicing was set.
	Position *chord.Position

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Positions   int
	SourceTime  time.Duration
	ComputeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SourceHit    bool
	FretboardHit bool
}

// ValidateAndSetDefaults checks the request and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := o.validateBoard(); err != nil {
		return err
	}
	if err := o.validateSource(); err != nil {
		return err
	}
	if err := o.validateSearch(); err != nil {
		return err
	}

	set := note.PitchSet(0)
	for _, s := range o.Selected {
		n, err := note.Parse(s)
		if err != nil {
			return fmt.Errorf("selected: %w", err)
		}
		set = set.Add(n.Chroma())
	}
	o.resolved.selected = set

	if o.Display == nil {
		d := fretboard.DefaultDisplay()
		o.Display = &d
	}
	o.resolved.display = *o.Display

	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if slices.Contains(o.Formats, FormatMIDI) && o.Scale == "" && o.Chord == "" {
		return errors.New(errors.ErrCodeInvalidInput, "midi output needs a scale or chord")
	}
	if err := o.MIDI.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

func (o *Options) validateBoard() error {
	if o.Tuning == "" {
		o.Tuning = DefaultTuning
	}
	name, err := tuning.Parse(o.Tuning)
	if err != nil {
		return err
	}
	o.resolved.tuning = name

	if o.StartFret == 0 && o.EndFret == 0 {
		o.EndFret = DefaultEndFret
	}
	if o.MaxFret == 0 {
		o.MaxFret = DefaultMaxFret
	}
	return errors.ValidateFretRange(o.StartFret, o.EndFret, o.MaxFret)
}

func (o *Options) validateSource() error {
	r := &o.resolved
	if o.Scale != "" && o.Chord != "" {
		return errors.New(errors.ErrCodeInvalidInput, "scale and chord are mutually exclusive")
	}
	if o.Root != "" {
		n, err := note.Parse(o.Root)
		if err != nil {
			return fmt.Errorf("root: %w", err)
		}
		r.root = &n
	}

	switch {
	case o.Scale != "":
		if r.root == nil {
			return errors.New(errors.ErrCodeInvalidInput, "scale %q needs a root", o.Scale)
		}
		t, err := scale.ParseType(o.Scale)
		if err != nil {
			return err
		}
		r.scale = t
	case o.Chord != "":
		if r.root == nil {
			c, err := chord.Parse(o.Chord)
			if err != nil {
				return err
			}
			root := c.Root
			r.root, r.quality = &root, c.Quality
		} else {
			q, err := chord.ParseQuality(o.Chord)
			if err != nil {
				return err
			}
			r.quality = q
		}
		for _, s := range o.Extensions {
			e, err := chord.ParseExtension(s)
			if err != nil {
				return err
			}
			r.extensions = append(r.extensions, e)
		}
		for _, s := range o.Alterations {
			a, err := chord.ParseAlteration(s)
			if err != nil {
				return err
			}
			r.alterations = append(r.alterations, a)
		}
	}

	switch {
	case o.Chord == "" && (len(o.Extensions) > 0 || len(o.Alterations) > 0):
		return errors.New(errors.ErrCodeInvalidInput, "extensions and alterations need a chord")
	case o.Voicing < 0:
		return errors.New(errors.ErrCodeInvalidInput, "voicing %d must not be negative", o.Voicing)
	case o.Voicing > 0 && o.Chord == "":
		return errors.New(errors.ErrCodeInvalidInput, "voicing needs a chord")
	}
	return nil
}

func (o *Options) validateSearch() error {
	s := chord.Search{
		MaxSpan:         o.MaxSpan,
		StartFret:       o.FingerStartFret,
		MaxFret:         o.MaxFingerFret,
		MaxCandidates:   o.MaxCandidates,
		Limit:           o.Limit,
		AllowInversions: o.AllowInversions,
	}.WithDefaults()
	if o.Voicing > s.Limit {
		s.Limit = o.Voicing
	}
	if o.Chord != "" {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	o.resolved.search = s
	return nil
}

// TuningName returns the resolved tuning. Call after ValidateAndSetDefaults.
func (o *Options) TuningName() tuning.Name { return o.resolved.tuning }

// RootNote returns the resolved root, or nil.
func (o *Options) RootNote() *note.Note { return o.resolved.root }

// SelectedSet returns the resolved selection.
func (o *Options) SelectedSet() note.PitchSet { return o.resolved.selected }

// ScaleKeyOpts returns cache key options for the scale stage.
func (o *Options) ScaleKeyOpts() cache.ScaleKeyOpts {
	return cache.ScaleKeyOpts{Root: o.resolved.root.String(), Type: o.resolved.scale.String()}
}

// ChordKeyOpts returns cache key options for the chord stage.
func (o *Options) ChordKeyOpts() cache.ChordKeyOpts {
	r := o.resolved
	k := cache.ChordKeyOpts{
		Root:            r.root.String(),
		Quality:         r.quality.String(),
		Tuning:          r.tuning.String(),
		StartFret:       r.search.StartFret,
		MaxFret:         r.search.MaxFret,
		MaxSpan:         r.search.MaxSpan,
		MaxCandidates:   r.search.MaxCandidates,
		Limit:           r.search.Limit,
		AllowInversions: r.search.AllowInversions,
	}
	for _, e := range r.extensions {
		k.Extensions = append(k.Extensions, e.String())
	}
	for _, a := range r.alterations {
		k.Alterations = append(k.Alterations, a.String())
	}
	return k
}

// FretboardKeyOpts returns cache key options for the compute stage.
// source is the canonical description of the resolved source.
func (o *Options) FretboardKeyOpts(source string) cache.FretboardKeyOpts {
	r := o.resolved
	k := cache.FretboardKeyOpts{
		Tuning:    r.tuning.String(),
		StartFret: o.StartFret,
		EndFret:   o.EndFret,
		MaxFret:   o.MaxFret,
		Source:    source,
		Selected:  r.selected.Chromas(),
		Display:   fmt.Sprintf("%+v", r.display),
	}
	if r.root != nil {
		k.Root = r.root.String()
	}
	if o.Hover != nil {
		k.Hover = coordKey(*o.Hover)
	}
	if len(o.Pressed) > 0 {
		parts := make([]string, len(o.Pressed))
		for i, c := range o.Pressed {
			parts[i] = coordKey(c)
		}
		slices.Sort(parts)
		k.Pressed = strings.Join(parts, ",")
	}
	return k
}

func coordKey(c fretboard.Coord) string {
	return strconv.Itoa(c.String) + ":" + strconv.Itoa(c.Fret)
}

// HasScale reports whether the request highlights a scale.
func (o *Options) HasScale() bool { return o.Scale != "" }

// HasChord reports whether the request highlights a chord.
func (o *Options) HasChord() bool { return o.Chord != "" }
