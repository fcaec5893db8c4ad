package note

import (
	"encoding/json"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/fretboard/pkg/errors"
)

func noteGen() *rapid.Generator[Note] {
	return rapid.Custom(func(t *rapid.T) Note {
		name := Name(rapid.IntRange(0, int(nameCount)-1).Draw(t, "name"))
		octave := rapid.IntRange(0, 10).Draw(t, "octave")
		return New(name, octave)
	})
}

func testAddInterval_Inverse_Properties(t *rapid.T) {
	n := noteGen().Draw(t, "note")
	k := rapid.IntRange(-500, 500).Draw(t, "semitones")

	back := AddInterval(AddInterval(n, k), -k)
	if !back.PitchEqual(n) {
		t.Fatalf("AddInterval(AddInterval(%v, %d), %d) = %v, want pitch-equal to %v", n, k, -k, back, n)
	}
}

func TestAddInterval_Inverse_Properties(t *testing.T) {
	rapid.Check(t, testAddInterval_Inverse_Properties)
}

func testAddInterval_Octave_Properties(t *rapid.T) {
	n := noteGen().Draw(t, "note")

	up := AddInterval(n, 12)
	if up.Name != n.Name {
		t.Fatalf("AddInterval(%v, 12).Name = %v, want %v", n, up.Name, n.Name)
	}
	if up.Chroma() != n.Chroma() {
		t.Fatalf("AddInterval(%v, 12).Chroma() = %d, want %d", n, up.Chroma(), n.Chroma())
	}
	if up.Octave != n.Octave+1 {
		t.Fatalf("AddInterval(%v, 12).Octave = %d, want %d", n, up.Octave, n.Octave+1)
	}
}

func TestAddInterval_Octave_Properties(t *testing.T) {
	rapid.Check(t, testAddInterval_Octave_Properties)
}

func testAddInterval_MIDI_Properties(t *rapid.T) {
	n := noteGen().Draw(t, "note")
	k := rapid.IntRange(-100, 100).Draw(t, "semitones")

	if got, want := AddInterval(n, k).MIDI(), n.MIDI()+k; got != want {
		t.Fatalf("AddInterval(%v, %d).MIDI() = %d, want %d", n, k, got, want)
	}
}

func TestAddInterval_MIDI_Properties(t *testing.T) {
	rapid.Check(t, testAddInterval_MIDI_Properties)
}

func TestAddInterval(t *testing.T) {
	tests := []struct {
		name      string
		from      Note
		semitones int
		want      Note
	}{
		{"zero", New(E, 2), 0, New(E, 2)},
		{"within octave", New(E, 2), 5, New(A, 2)},
		{"crosses octave", New(E, 2), 8, New(C, 3)},
		{"down within octave", New(A, 2), -5, New(E, 2)},
		{"down across octave", New(C, 3), -1, New(B, 2)},
		{"down two octaves", New(C, 3), -25, New(B, 0)},
		{"sharp spelling", New(C, 4), 1, New(CSharp, 4)},
		{"flat spelling kept", New(BFlat, 3), 1, New(B, 3)},
		{"flat source stays flat", New(EFlat, 3), 3, New(GFlat, 3)},
		{"large interval", New(G, 3), 29, New(C, 6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddInterval(tt.from, tt.semitones); got != tt.want {
				t.Errorf("AddInterval(%v, %d) = %v, want %v", tt.from, tt.semitones, got, tt.want)
			}
		})
	}
}

func TestFromChroma(t *testing.T) {
	n, err := FromChroma(1, PreferFlat)
	if err != nil {
		t.Fatalf("FromChroma(1) error: %v", err)
	}
	if n.Name != DFlat || n.Octave != DefaultOctave {
		t.Errorf("FromChroma(1, flat) = %v, want Db%d", n, DefaultOctave)
	}

	n, _ = FromChroma(6, PreferSharp)
	if n.Name != FSharp {
		t.Errorf("FromChroma(6, sharp) = %v, want F#", n)
	}

	for _, pos := range []int{-1, 12, 99} {
		if _, err := FromChroma(pos, PreferSharp); !errors.Is(err, errors.ErrCodeInvalidPitch) {
			t.Errorf("FromChroma(%d) error = %v, want INVALID_PITCH", pos, err)
		}
	}
}

func TestEnharmonics(t *testing.T) {
	blackKeys := map[int][]Name{
		1:  {CSharp, DFlat},
		3:  {DSharp, EFlat},
		6:  {FSharp, GFlat},
		8:  {GSharp, AFlat},
		10: {ASharp, BFlat},
	}
	for chroma, want := range blackKeys {
		n, _ := FromChroma(chroma, PreferFlat)
		if got := Enharmonics(n); !slices.Equal(got, want) {
			t.Errorf("Enharmonics(%v) = %v, want %v", n, got, want)
		}
	}

	if got := New(E, 2).Enharmonics(); !slices.Equal(got, []Name{E}) {
		t.Errorf("Enharmonics(E2) = %v, want [E]", got)
	}
}

func TestIntervalBetween(t *testing.T) {
	tests := []struct {
		a, b Note
		want int
	}{
		{New(C, 4), New(E, 4), 4},
		{New(E, 4), New(C, 4), 8},
		{New(C, 4), New(C, 6), 0},
		{New(A, 2), New(DFlat, 3), 4},
		{New(B, 3), New(C, 1), 1},
	}
	for _, tt := range tests {
		if got := IntervalBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("IntervalBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPitchEqual(t *testing.T) {
	if !New(CSharp, 4).PitchEqual(New(DFlat, 4)) {
		t.Error("C#4 and Db4 should be pitch-equal")
	}
	if New(CSharp, 4).PitchEqual(New(DFlat, 5)) {
		t.Error("C#4 and Db5 should not be pitch-equal")
	}
	if !New(CSharp, 4).SamePitchClass(New(DFlat, 5)) {
		t.Error("C#4 and Db5 share a pitch class")
	}
}

func TestMIDI(t *testing.T) {
	tests := map[string]int{"C4": 60, "E2": 40, "A4": 69, "C-1": 0}
	for s, want := range tests {
		var n Note
		if s == "C-1" {
			n = New(C, -1)
		} else {
			n = MustParse(s)
		}
		if got := n.MIDI(); got != want {
			t.Errorf("%s.MIDI() = %d, want %d", s, got, want)
		}
		if back := FromMIDI(want, PreferSharp); !back.PitchEqual(n) {
			t.Errorf("FromMIDI(%d) = %v, want %v", want, back, n)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Note
		wantErr bool
	}{
		{"C#4", New(CSharp, 4), false},
		{"eb2", New(EFlat, 2), false},
		{"bb", New(BFlat, DefaultOctave), false},
		{"F♯3", New(FSharp, 3), false},
		{"A", New(A, DefaultOctave), false},
		{"B#", Note{}, true},
		{"H2", Note{}, true},
		{"4", Note{}, true},
		{"C11", Note{}, true},
		{"", Note{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRespell(t *testing.T) {
	if got := New(CSharp, 3).Respell(PreferFlat); got != New(DFlat, 3) {
		t.Errorf("Respell(C#3, flat) = %v, want Db3", got)
	}
	if got := New(G, 3).Respell(PreferFlat); got != New(G, 3) {
		t.Errorf("Respell(G3, flat) = %v, want G3", got)
	}
}

func TestNoteJSON(t *testing.T) {
	data, err := json.Marshal(New(DFlat, 3))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"name":"Db","octave":3,"chromaticPosition":1,"enharmonicNames":["C#","Db"],"displayMode":"flat"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Note
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back != New(DFlat, 3) {
		t.Errorf("Unmarshal = %v, want Db3", back)
	}

	if err := json.Unmarshal([]byte(`{"octave":3}`), &back); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Unmarshal without name error = %v, want INVALID_FORMAT", err)
	}
}

func TestPitchSet(t *testing.T) {
	s := SetOf(New(C, 4), New(E, 2), New(G, 7), New(C, 1))
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if !s.Has(4) || s.Has(5) {
		t.Errorf("membership wrong: %v", s)
	}
	if !s.Contains(New(E, 5)) || s.Contains(New(GFlat, 2)) {
		t.Errorf("Contains disagrees with Has: %v", s)
	}
	if got := s.Toggle(4).Has(4); got {
		t.Error("Toggle should remove an existing member")
	}
	if got := s.Remove(0).Add(-1).Chromas(); !slices.Equal(got, []int{4, 7, 11}) {
		t.Errorf("Chromas() = %v, want [4 7 11]", got)
	}
	if s.String() != "{C E G}" {
		t.Errorf("String() = %q", s.String())
	}

	data, _ := json.Marshal(s)
	var back PitchSet
	if err := json.Unmarshal(data, &back); err != nil || back != s {
		t.Errorf("JSON round trip = %v (%v), want %v", back, err, s)
	}
}
