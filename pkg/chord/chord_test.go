package chord

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

func names(tones []Tone) []string {
	out := make([]string, len(tones))
	for i, t := range tones {
		out[i] = t.Note.String()
	}
	return out
}

func labels(tones []Tone) []string {
	out := make([]string, len(tones))
	for i, t := range tones {
		out[i] = t.Label
	}
	return out
}

func TestBuildTones(t *testing.T) {
	c4 := note.New(note.C, 4)
	tests := []struct {
		name   string
		q      Quality
		exts   []Extension
		alts   []Alteration
		notes  []string
		labels []string
	}{
		{"major", Major, nil, nil, []string{"C4", "E4", "G4"}, []string{"R", "3", "5"}},
		{"minor", Minor, nil, nil, []string{"C4", "Eb4", "G4"}, []string{"R", "b3", "5"}},
		{"diminished7", Diminished7, nil, nil, []string{"C4", "Eb4", "Gb4", "A4"}, []string{"R", "b3", "b5", "bb7"}},
		{"major7", Major7, nil, nil, []string{"C4", "E4", "G4", "B4"}, []string{"R", "3", "5", "7"}},
		{"minor7", Minor7, nil, nil, []string{"C4", "Eb4", "G4", "Bb4"}, []string{"R", "b3", "5", "b7"}},
		{"sus4", Sus4, nil, nil, []string{"C4", "F4", "G4"}, []string{"R", "4", "5"}},
		{"add ninth", Major, []Extension{Ninth}, nil, []string{"C4", "E4", "G4", "D5"}, []string{"R", "3", "5", "9"}},
		{"sharp five replaces fifth", Major, nil, []Alteration{SharpFive}, []string{"C4", "E4", "G#4"}, []string{"R", "3", "#5"}},
		{"seven sharp nine", Dominant, nil, []Alteration{SharpNine}, []string{"C4", "E4", "G4", "Bb4", "D#5"}, []string{"R", "3", "5", "b7", "#9"}},
		{"altered replaces extension", Dominant, []Extension{Ninth}, []Alteration{FlatNine}, []string{"C4", "E4", "G4", "Bb4", "Db5"}, []string{"R", "3", "5", "b7", "b9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tones, err := BuildTones(c4, tt.q, tt.exts, tt.alts)
			require.NoError(t, err)
			require.Equal(t, tt.notes, names(tones))
			require.Equal(t, tt.labels, labels(tones))
		})
	}
}

func TestBuildTonesFunctions(t *testing.T) {
	tones, err := BuildTones(note.New(note.C, 4), Dominant, []Extension{Thirteenth}, []Alteration{FlatFive, SharpEleven})
	require.NoError(t, err)

	got := map[string]Function{}
	for _, tone := range tones {
		got[tone.Label] = tone.Function
	}
	require.Equal(t, map[string]Function{
		"R":   FunctionRoot,
		"3":   FunctionThird,
		"b5":  FunctionFifth,
		"b7":  FunctionSeventh,
		"#11": FunctionTension,
		"13":  FunctionExtension,
	}, got)

	for _, tone := range tones {
		if tone.Label == "b5" {
			require.Equal(t, "diminished fifth", tone.Interval)
			require.Equal(t, 6, tone.Semitones)
		}
	}
}

func TestBuildTonesOrdered(t *testing.T) {
	tones, err := BuildTones(note.New(note.A, 2), Minor7, []Extension{Eleventh, Ninth}, nil)
	require.NoError(t, err)
	for i := 1; i < len(tones); i++ {
		require.Less(t, tones[i-1].Semitones, tones[i].Semitones)
	}
}

func TestBuildTonesErrors(t *testing.T) {
	_, err := BuildTones(note.Note{Name: 99}, Major, nil, nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidPitch))

	_, err = BuildTones(note.New(note.C, 4), Quality(200), nil, nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = BuildTones(note.New(note.C, 4), Major, []Extension{Extension(9)}, nil)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = BuildTones(note.New(note.C, 4), Major, nil, []Alteration{Alteration(42)})
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSymbolAndFullName(t *testing.T) {
	tests := []struct {
		chord  Chord
		symbol string
		full   string
	}{
		{MustBuild(note.New(note.C, 4), Major7, nil, nil), "Cmaj7", "C Major 7th"},
		{MustBuild(note.New(note.A, 3), Minor, nil, nil), "Am", "A minor"},
		{MustBuild(note.New(note.G, 3), Dominant, []Extension{Ninth}, []Alteration{SharpEleven}), "G7(9,#11)", "G Dominant 7th (add 9, #11)"},
		{MustBuild(note.New(note.EFlat, 3), Minor, []Extension{Ninth}, nil), "Ebm(add9)", "Eb minor (add 9)"},
		{MustBuild(note.New(note.B, 3), HalfDiminished, nil, nil), "Bm7b5", "B half-diminished 7th"},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			require.Equal(t, tt.symbol, tt.chord.Symbol())
			require.Equal(t, tt.full, tt.chord.FullName())
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		root note.Name
		q    Quality
	}{
		{"C", note.C, Major},
		{"F#m7", note.FSharp, Minor7},
		{"Bbmaj7", note.BFlat, Major7},
		{"BbM7", note.BFlat, Major7},
		{"Em7b5", note.E, HalfDiminished},
		{"Ddim7", note.D, Diminished7},
		{"Asus4", note.A, Sus4},
		{"E♭7", note.EFlat, Dominant},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.root, c.Root.Name)
			require.Equal(t, tt.q, c.Quality)
		})
	}

	for _, bad := range []string{"", "H7", "Cmaj13b"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
	}
}

func TestParseQualityCaseSensitiveSuffix(t *testing.T) {
	q, err := ParseQuality("M7")
	require.NoError(t, err)
	require.Equal(t, Major7, q)

	q, err = ParseQuality("m7")
	require.NoError(t, err)
	require.Equal(t, Minor7, q)

	q, err = ParseQuality("HALF-DIMINISHED")
	require.NoError(t, err)
	require.Equal(t, HalfDiminished, q)
}

func TestParseExtensionAndAlteration(t *testing.T) {
	e, err := ParseExtension("add9")
	require.NoError(t, err)
	require.Equal(t, Ninth, e)

	a, err := ParseAlteration("♭13")
	require.NoError(t, err)
	require.Equal(t, FlatThirteen, a)

	_, err = ParseExtension("7")
	require.Error(t, err)
	_, err = ParseAlteration("b11")
	require.Error(t, err)
}

func TestChordMembership(t *testing.T) {
	c := MustBuild(note.New(note.D, 3), Dominant, nil, nil)
	require.True(t, c.Contains(note.New(note.FSharp, 1)))
	require.True(t, c.Contains(note.New(note.GFlat, 6)))
	require.False(t, c.Contains(note.New(note.F, 3)))

	tone, ok := c.Tone(note.New(note.C, 0))
	require.True(t, ok)
	require.Equal(t, FunctionSeventh, tone.Function)
	require.Equal(t, 4, c.PitchSet().Len())
}

func TestDifficultyWithoutPositions(t *testing.T) {
	require.Equal(t, Beginner, MustBuild(note.New(note.C, 4), Major, nil, nil).Difficulty)
	require.Equal(t, Intermediate, MustBuild(note.New(note.C, 4), Dominant, nil, nil).Difficulty)
	require.Equal(t, Advanced, MustBuild(note.New(note.C, 4), Dominant, []Extension{Ninth, Thirteenth}, nil).Difficulty)
}

func TestCommonProgressions(t *testing.T) {
	for _, q := range Qualities() {
		require.NotEmpty(t, q.Progressions(), q.String())
	}
	require.Nil(t, qualityCount.Progressions())

	c := MustBuild(note.New(note.G, 3), Dominant, nil, nil)
	require.Contains(t, c.CommonProgressions, "V7-I")

	c.CommonProgressions[0] = "mutated"
	require.NotEqual(t, "mutated", Dominant.Progressions()[0])
}

func TestChordJSON(t *testing.T) {
	c := MustBuild(note.New(note.A, 3), Dominant, []Extension{Ninth}, []Alteration{FlatNine})
	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.Contains(t, string(data), `"quality":"dominant"`)
	require.Contains(t, string(data), `"function":"tension"`)

	var back Chord
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, c.Quality, back.Quality)
	require.Equal(t, c.Extensions, back.Extensions)
	require.Equal(t, c.Alterations, back.Alterations)
	require.Equal(t, names(c.Tones), names(back.Tones))
	require.Equal(t, c.Difficulty, back.Difficulty)
	require.Equal(t, c.CommonProgressions, back.CommonProgressions)
}
