package chord

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

var standard = []note.Note{
	note.MustParse("E2"), note.MustParse("A2"), note.MustParse("D3"),
	note.MustParse("G3"), note.MustParse("B3"), note.MustParse("E4"),
}

func topShape(t *testing.T, symbol string, s Search) Position {
	t.Helper()
	c, err := Parse(symbol)
	require.NoError(t, err)
	positions, err := FindFingerings(c.Tones, standard, s)
	require.NoError(t, err)
	require.NotEmpty(t, positions)
	return positions[0]
}

func TestFindFingeringsOpenChords(t *testing.T) {
	tests := []struct {
		symbol  string
		shape   string
		fingers []int
	}{
		{"C", "x32010", []int{0, 3, 2, 0, 1, 0}},
		{"G", "320003", []int{2, 1, 0, 0, 0, 3}},
		{"E", "022100", []int{0, 2, 3, 1, 0, 0}},
		{"Am", "x02210", []int{0, 0, 2, 3, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			p := topShape(t, tt.symbol, Search{})
			require.Equal(t, tt.shape, p.String())
			require.Equal(t, tt.fingers, p.Fingers)
			require.Equal(t, "Open", p.Name)
			require.Equal(t, VoicingOpen, p.Voicing)
			require.Zero(t, p.Barre)
			require.Zero(t, p.StartFret)
		})
	}
}

func TestFindFingeringsMutedFlags(t *testing.T) {
	p := topShape(t, "C", Search{})
	require.Equal(t, []bool{true, false, false, false, false, false}, p.Muted)
	require.Equal(t, Muted, p.Frets[0])
	require.Equal(t, 1, p.MutedCount())
	require.Equal(t, 2, p.Span())
	require.Equal(t, 3, p.FingerCount())
}

func TestFindFingeringsBarre(t *testing.T) {
	p := topShape(t, "F", Search{StartFret: 1})
	require.Equal(t, "133211", p.String())
	require.Equal(t, 1, p.Barre)
	require.Equal(t, []int{1, 3, 4, 2, 1, 1}, p.Fingers)
	require.Equal(t, "Barre at fret 1", p.Name)
	require.Equal(t, VoicingSpread, p.Voicing)
}

func TestFindFingeringsInversions(t *testing.T) {
	p := topShape(t, "C", Search{AllowInversions: true})
	require.Equal(t, "032010", p.String())
	require.Zero(t, p.MutedCount())
}

func TestFindFingeringsRanking(t *testing.T) {
	c := MustBuild(note.New(note.C, 3), Major, nil, nil)
	positions, err := FindFingerings(c.Tones, standard, Search{Limit: 20})
	require.NoError(t, err)
	require.LessOrEqual(t, len(positions), 20)
	for i := 1; i < len(positions); i++ {
		require.LessOrEqual(t, positions[i-1].MutedCount(), positions[i].MutedCount())
	}
	for _, p := range positions {
		sounding := note.PitchSet(0)
		for s, f := range p.Frets {
			if f != Muted {
				sounding = sounding.Add(standard[s].Chroma() + f)
			}
		}
		require.Equal(t, c.PitchSet(), sounding&c.PitchSet(), p.String())
		require.LessOrEqual(t, p.FingerCount(), 4)
	}
}

func TestFindFingeringsLimit(t *testing.T) {
	c := MustBuild(note.New(note.C, 3), Major, nil, nil)
	positions, err := FindFingerings(c.Tones, standard, Search{Limit: 2, AllowInversions: true})
	require.NoError(t, err)
	require.Len(t, positions, 2)
}

func TestFindFingeringsNoneFound(t *testing.T) {
	c := MustBuild(note.New(note.C, 3), Major, nil, nil)
	_, err := FindFingerings(c.Tones, standard[:1], Search{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrCodeNoFingeringFound))
	require.True(t, errors.IsRecoverable(err))
}

func TestFindFingeringsInvalidSearch(t *testing.T) {
	c := MustBuild(note.New(note.C, 3), Major, nil, nil)

	_, err := FindFingerings(c.Tones, standard, Search{MaxSpan: 9})
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = FindFingerings(c.Tones, standard, Search{StartFret: 30})
	require.True(t, errors.Is(err, errors.ErrCodeOutOfRange))

	_, err = FindFingerings(nil, standard, Search{})
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = FindFingerings(c.Tones, nil, Search{})
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestFindFingeringsDropsFifth(t *testing.T) {
	// Four tones on three strings: the fifth becomes optional.
	c := MustBuild(note.New(note.G, 3), Dominant, nil, nil)
	positions, err := FindFingerings(c.Tones, standard[:3], Search{AllowInversions: true})
	require.NoError(t, err)
	require.NotEmpty(t, positions)
}

func TestWithFingerings(t *testing.T) {
	c, err := Parse("F")
	require.NoError(t, err)
	c, err = WithFingerings(c, standard, Search{StartFret: 1})
	require.NoError(t, err)
	require.NotEmpty(t, c.Positions)
	require.True(t, c.IsBarre())
	require.Equal(t, 1, c.BarreFret())
	require.Equal(t, Intermediate, c.Difficulty)

	open, err := WithFingerings(MustBuild(note.New(note.C, 3), Major, nil, nil), standard, Search{})
	require.NoError(t, err)
	require.False(t, open.IsBarre())
	require.Equal(t, Beginner, open.Difficulty)
}

func TestPositionString(t *testing.T) {
	p := Position{Frets: []int{Muted, 10, 12, 12, 11, 10}}
	require.Equal(t, "x-10-12-12-11-10", p.String())
}
