// Package midi exports chords and scales as Standard MIDI Files.
//
// Chords are strummed from the lowest string to the highest: each voicing
// in [chord.Chord.Positions] becomes one bar, and a chord without positions
// plays its tones as a block. Scales play one note per beat from the root
// up to the root an octave higher.
//
//	var buf bytes.Buffer
//	_, err := midi.WriteChord(&buf, c, tuning.MustGet(tuning.Standard).StringNotes, midi.Options{})
package midi

import (
	"bytes"
	"io"
	"slices"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/scale"
)

// Resolution is the number of ticks per quarter note.
const Resolution = 960

const (
	DefaultTempo      = 100.0
	DefaultVelocity   = 90
	DefaultProgram    = 25 // Acoustic Guitar (steel), zero based
	DefaultStrumTicks = 30
	DefaultChordBeats = 4
	DefaultNoteBeats  = 1
)

// Options controls the generated file. Zero values take the defaults; a
// nil Program selects [DefaultProgram], since program 0 is a valid choice.
type Options struct {
	Tempo      float64 `json:"tempo" toml:"tempo" yaml:"tempo"`
	Channel    uint8   `json:"channel" toml:"channel" yaml:"channel"`
	Velocity   uint8   `json:"velocity" toml:"velocity" yaml:"velocity"`
	Program    *uint8  `json:"program,omitempty" toml:"program" yaml:"program,omitempty"`
	StrumTicks uint32  `json:"strumTicks" toml:"strum_ticks" yaml:"strum_ticks"`
	ChordBeats int     `json:"chordBeats" toml:"chord_beats" yaml:"chord_beats"`
	NoteBeats  int     `json:"noteBeats" toml:"note_beats" yaml:"note_beats"`
}

// ValidateAndSetDefaults fills zero fields and rejects out-of-range ones.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Tempo == 0 {
		o.Tempo = DefaultTempo
	}
	if o.Velocity == 0 {
		o.Velocity = DefaultVelocity
	}
	if o.Program == nil {
		o.Program = Program(DefaultProgram)
	}
	if o.StrumTicks == 0 {
		o.StrumTicks = DefaultStrumTicks
	}
	if o.ChordBeats == 0 {
		o.ChordBeats = DefaultChordBeats
	}
	if o.NoteBeats == 0 {
		o.NoteBeats = DefaultNoteBeats
	}
	switch {
	case o.Tempo < 20 || o.Tempo > 400:
		return errors.New(errors.ErrCodeInvalidInput, "tempo %.1f outside 20-400 bpm", o.Tempo)
	case o.Channel > 15:
		return errors.New(errors.ErrCodeInvalidInput, "channel %d outside 0-15", o.Channel)
	case o.Velocity > 127:
		return errors.New(errors.ErrCodeInvalidInput, "velocity %d outside 1-127", o.Velocity)
	case *o.Program > 127:
		return errors.New(errors.ErrCodeInvalidInput, "program %d outside 0-127", *o.Program)
	case o.ChordBeats < 0 || o.NoteBeats < 0:
		return errors.New(errors.ErrCodeInvalidInput, "note lengths must be positive")
	}
	return nil
}

// Program returns a pointer for [Options.Program].
func Program(n uint8) *uint8 { return &n }

// Key returns the MIDI key of n. Notes outside 0-127 fail with
// OUT_OF_RANGE.
func Key(n note.Note) (uint8, error) {
	k := n.MIDI()
	if k < 0 || k > 127 {
		return 0, errors.New(errors.ErrCodeOutOfRange, "%s has MIDI key %d outside 0-127", n, k)
	}
	return uint8(k), nil
}

// track accumulates events with delta times.
type track struct {
	tr    smf.Track
	clock smf.MetricTicks
	o     Options
}

func newTrack(name string, o Options) *track {
	t := &track{clock: smf.MetricTicks(Resolution), o: o}
	t.tr.Add(0, smf.MetaTrackSequenceName(name))
	t.tr.Add(0, smf.MetaMeter(4, 4))
	t.tr.Add(0, smf.MetaTempo(o.Tempo))
	t.tr.Add(0, gomidi.ProgramChange(o.Channel, *o.Program))
	return t
}

func (t *track) beats(n int) uint32 { return t.clock.Ticks4th() * uint32(n) }

// strum starts keys one after another, StrumTicks apart, and releases them
// together so the group lasts length ticks.
func (t *track) strum(keys []uint8, length uint32) {
	spread := min(uint32(len(keys)-1)*t.o.StrumTicks, length-1)
	step := uint32(0)
	if len(keys) > 1 {
		step = spread / uint32(len(keys)-1)
	}
	for i, k := range keys {
		var d uint32
		if i > 0 {
			d = step
		}
		t.tr.Add(d, gomidi.NoteOn(t.o.Channel, k, t.o.Velocity))
	}
	held := length - step*uint32(len(keys)-1)
	for i, k := range keys {
		var d uint32
		if i == 0 {
			d = held
		}
		t.tr.Add(d, gomidi.NoteOff(t.o.Channel, k))
	}
}

func (t *track) file() (*smf.SMF, error) {
	t.tr.Close(0)
	s := smf.New()
	s.TimeFormat = t.clock
	if err := s.Add(t.tr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "add track")
	}
	return s, nil
}

// VoicingKeys returns the sounding keys of p on the given open strings,
// lowest string first, without duplicates.
func VoicingKeys(p chord.Position, openStrings []note.Note) ([]uint8, error) {
	if len(p.Frets) != len(openStrings) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"position covers %d strings, tuning has %d", len(p.Frets), len(openStrings))
	}
	var keys []uint8
	for i, f := range p.Frets {
		if f == chord.Muted {
			continue
		}
		k, err := Key(note.AddInterval(openStrings[i], f))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "position %s sounds no strings", p)
	}
	return keys, nil
}

// Chord builds a file for c. openStrings is only read when c has
// positions.
func Chord(c chord.Chord, openStrings []note.Note, o Options) (*smf.SMF, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	t := newTrack(c.Symbol(), o)
	length := t.beats(o.ChordBeats)

	if len(c.Tones) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chord has no tones")
	}
	if len(c.Positions) == 0 {
		keys := make([]uint8, 0, len(c.Tones))
		for _, tone := range c.Tones {
			k, err := Key(tone.Note)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
		}
		t.strum(keys, length)
		return t.file()
	}
	for _, p := range c.Positions {
		keys, err := VoicingKeys(p, openStrings)
		if err != nil {
			return nil, err
		}
		t.strum(keys, length)
	}
	return t.file()
}

// Scale builds a file playing s upward from its root to the octave.
func Scale(s scale.Scale, o Options) (*smf.SMF, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	t := newTrack(s.Name(), o)
	length := t.beats(o.NoteBeats)
	for _, d := range s.Degrees {
		k, err := Key(note.AddInterval(s.Root, d.Semitones))
		if err != nil {
			return nil, err
		}
		t.strum([]uint8{k}, length)
	}
	top, err := Key(note.AddInterval(s.Root, 12))
	if err != nil {
		return nil, err
	}
	t.strum([]uint8{top}, length)
	return t.file()
}

// WriteChord writes the file of [Chord] to w.
func WriteChord(w io.Writer, c chord.Chord, openStrings []note.Note, o Options) (int64, error) {
	s, err := Chord(c, openStrings, o)
	if err != nil {
		return 0, err
	}
	return write(w, s)
}

// WriteScale writes the file of [Scale] to w.
func WriteScale(w io.Writer, s scale.Scale, o Options) (int64, error) {
	f, err := Scale(s, o)
	if err != nil {
		return 0, err
	}
	return write(w, f)
}

func write(w io.Writer, s *smf.SMF) (int64, error) {
	n, err := s.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeInternal, err, "write midi")
	}
	return n, nil
}

// Encode returns the bytes of s.
func Encode(s *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
