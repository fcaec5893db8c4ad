package midi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/scale"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

type played struct {
	key   uint8
	start uint32
	end   uint32
}

// readNotes decodes data and pairs note starts with their ends.
func readNotes(t *testing.T, data []byte) ([]played, float64) {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	var (
		out   []played
		open  = map[uint8]int{}
		tempo float64
		now   uint32
	)
	for _, ev := range s.Tracks[0] {
		now += ev.Delta
		var ch, key, vel uint8
		var bpm float64
		msg := gomidi.Message(ev.Message)
		switch {
		case ev.Message.GetMetaTempo(&bpm):
			tempo = bpm
		case msg.GetNoteStart(&ch, &key, &vel):
			open[key] = len(out)
			out = append(out, played{key: key, start: now})
		case msg.GetNoteEnd(&ch, &key):
			i, ok := open[key]
			require.True(t, ok, "note %d ended without starting", key)
			out[i].end = now
			delete(open, key)
		}
	}
	require.Empty(t, open, "notes left hanging")
	return out, tempo
}

func keys(ps []played) []uint8 {
	out := make([]uint8, len(ps))
	for i, p := range ps {
		out[i] = p.key
	}
	return out
}

func TestKey(t *testing.T) {
	k, err := Key(note.MustParse("C4"))
	require.NoError(t, err)
	require.Equal(t, uint8(60), k)

	k, err = Key(note.MustParse("E2"))
	require.NoError(t, err)
	require.Equal(t, uint8(40), k)

	_, err = Key(note.New(note.A, 10))
	require.True(t, errors.Is(err, errors.ErrCodeOutOfRange), "got %v", err)
}

func TestScale(t *testing.T) {
	s := scale.MustNew(note.MustParse("A3"), scale.PentatonicMinor)
	var buf bytes.Buffer
	_, err := WriteScale(&buf, s, Options{Tempo: 90})
	require.NoError(t, err)

	notes, tempo := readNotes(t, buf.Bytes())
	require.InDelta(t, 90.0, tempo, 0.01)
	require.Equal(t, []uint8{57, 60, 62, 64, 67, 69}, keys(notes))
	for i, n := range notes {
		require.Equal(t, uint32(i*Resolution), n.start, "note %d start", i)
		require.Equal(t, uint32((i+1)*Resolution), n.end, "note %d end", i)
	}
}

func TestChordPositions(t *testing.T) {
	c := chord.MustBuild(note.MustParse("C3"), chord.Major, nil, nil)
	c.Positions = []chord.Position{
		{Frets: []int{chord.Muted, 3, 2, 0, 1, 0}, Fingers: []int{0, 3, 2, 0, 1, 0}},
	}
	opens := tuning.MustGet(tuning.Standard).StringNotes

	var buf bytes.Buffer
	_, err := WriteChord(&buf, c, opens, Options{StrumTicks: 20})
	require.NoError(t, err)

	notes, tempo := readNotes(t, buf.Bytes())
	require.InDelta(t, DefaultTempo, tempo, 0.01)
	// C3 E3 G3 C4 E4
	require.Equal(t, []uint8{48, 52, 55, 60, 64}, keys(notes))
	for i, n := range notes {
		require.Equal(t, uint32(i*20), n.start, "string %d strum offset", i)
		require.Equal(t, uint32(4*Resolution), n.end)
	}
}

func TestChordBlock(t *testing.T) {
	c := chord.MustBuild(note.MustParse("G3"), chord.Dominant, nil, nil)
	data := mustEncode(t, c, nil)
	notes, _ := readNotes(t, data)
	// G3 B3 D4 F4
	require.Equal(t, []uint8{55, 59, 62, 65}, keys(notes))
}

func TestChordSeveralPositions(t *testing.T) {
	c := chord.MustBuild(note.MustParse("A2"), chord.Minor, nil, nil)
	c.Positions = []chord.Position{
		{Frets: []int{chord.Muted, 0, 2, 2, 1, 0}},
		{Frets: []int{5, 7, 7, 5, 5, 5}},
	}
	data := mustEncode(t, c, tuning.MustGet(tuning.Standard).StringNotes)
	notes, _ := readNotes(t, data)

	bar := uint32(4 * Resolution)
	require.Len(t, notes, 11)
	require.Equal(t, uint32(0), notes[0].start)
	require.Equal(t, bar, notes[5].start, "second voicing starts on the next bar")
	require.Equal(t, 2*bar, notes[10].end)
}

func TestVoicingKeysDeduplicates(t *testing.T) {
	opens := tuning.MustGet(tuning.Standard).StringNotes
	// G string fret 4 and the open B string are both B3.
	keys, err := VoicingKeys(chord.Position{Frets: []int{chord.Muted, chord.Muted, chord.Muted, 4, 0, chord.Muted}}, opens)
	require.NoError(t, err)
	require.Equal(t, []uint8{59}, keys)

	_, err = VoicingKeys(chord.Position{Frets: []int{0, 0}}, opens)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = VoicingKeys(chord.Position{Frets: []int{-1, -1, -1, -1, -1, -1}}, opens)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestOptionsValidate(t *testing.T) {
	o := Options{}
	require.NoError(t, o.ValidateAndSetDefaults())
	require.Equal(t, Options{
		Tempo: DefaultTempo, Velocity: DefaultVelocity, Program: Program(DefaultProgram),
		StrumTicks: DefaultStrumTicks, ChordBeats: DefaultChordBeats, NoteBeats: DefaultNoteBeats,
	}, o)

	for _, bad := range []Options{{Tempo: 5}, {Channel: 16}, {Velocity: 200}, {Program: Program(128)}, {NoteBeats: -1}} {
		require.Error(t, bad.ValidateAndSetDefaults(), "%+v", bad)
	}
}

func mustEncode(t *testing.T, c chord.Chord, opens []note.Note) []byte {
	t.Helper()
	s, err := Chord(c, opens, Options{})
	require.NoError(t, err)
	data, err := Encode(s)
	require.NoError(t, err)
	return data
}

func programOf(t *testing.T, s *smf.SMF) uint8 {
	t.Helper()
	for _, ev := range s.Tracks[0] {
		var ch, prog uint8
		if gomidi.Message(ev.Message).GetProgramChange(&ch, &prog) {
			return prog
		}
	}
	t.Fatal("no program change")
	return 0
}

func TestProgramZeroIsKept(t *testing.T) {
	s := scale.MustNew(note.New(note.C, 4), scale.Major)

	piano, err := Scale(s, Options{Program: Program(0)})
	require.NoError(t, err)
	require.Equal(t, uint8(0), programOf(t, piano))

	guitar, err := Scale(s, Options{})
	require.NoError(t, err)
	require.Equal(t, uint8(DefaultProgram), programOf(t, guitar))
}
