package fretboard

import (
	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/scale"
)

// SourceKind tags the active highlight source.
type SourceKind uint8

const (
	SourceNone SourceKind = iota
	SourceScale
	SourceChord
)

var sourceKindNames = [...]string{"none", "scale", "chord"}

func (k SourceKind) String() string {
	if int(k) < len(sourceKindNames) {
		return sourceKindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k SourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SourceKind) UnmarshalText(text []byte) error {
	for i, name := range sourceKindNames {
		if name == string(text) {
			*k = SourceKind(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown highlight source %q", string(text))
}

// Source is the musical construct that drives highlighting. A board has at
// most one: no source, a scale or a chord. The set of implementations is
// closed.
type Source interface {
	Kind() SourceKind
	source()
}

// NoSource highlights nothing beyond the optional root and selection.
type NoSource struct{}

// ScaleSource highlights the notes of a scale.
type ScaleSource struct {
	Scale scale.Scale
}

// ChordSource highlights the tones of a chord. When Position is set, its
// muted strings and finger numbers are shown as well.
type ChordSource struct {
	Chord    chord.Chord
	Position *chord.Position
}

func (NoSource) Kind() SourceKind    { return SourceNone }
func (ScaleSource) Kind() SourceKind { return SourceScale }
func (ChordSource) Kind() SourceKind { return SourceChord }

func (NoSource) source()    {}
func (ScaleSource) source() {}
func (ChordSource) source() {}

// membership is the per-pitch-class view of a source used while mapping.
type membership struct {
	kind     SourceKind
	root     *note.Note
	set      note.PitchSet
	spelling [12]note.Name
	spelled  note.PitchSet
	labels   [12]string
}

func newMembership(src Source, root *note.Note) membership {
	m := membership{kind: SourceNone}
	if root != nil {
		r := *root
		m.root = &r
	}
	switch s := src.(type) {
	case ScaleSource:
		m.kind = SourceScale
		r := s.Scale.Root
		m.root = &r
		for _, d := range s.Scale.Degrees {
			m.add(d.Note, d.Abbreviation)
		}
	case ChordSource:
		m.kind = SourceChord
		r := s.Chord.Root
		m.root = &r
		for _, t := range s.Chord.Tones {
			m.add(t.Note, t.Label)
		}
	case NoSource, nil:
	}
	return m
}

func (m *membership) add(n note.Note, label string) {
	c := n.Chroma()
	m.set = m.set.Add(c)
	if !m.spelled.Has(c) {
		m.spelling[c] = n.Name
		m.labels[c] = label
		m.spelled = m.spelled.Add(c)
	}
}

func (m *membership) candidates(n note.Note) Candidates {
	c := n.Chroma()
	isRoot := m.root != nil && m.root.Chroma() == c
	return Candidates{
		Root:      isRoot,
		ChordTone: m.kind == SourceChord && m.set.Has(c),
		ScaleNote: m.kind == SourceScale && m.set.Has(c),
		Interval:  m.kind == SourceNone && m.root != nil && !isRoot,
	}
}

// interval labels n relative to the active root, preferring the source's
// own degree label.
func (m *membership) interval(n note.Note) string {
	if m.root == nil {
		return ""
	}
	c := n.Chroma()
	if m.spelled.Has(c) {
		return m.labels[c]
	}
	return note.IntervalAbbrev(note.IntervalBetween(*m.root, n))
}
