package scale

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/note"
)

func chromas(notes []note.Note) []int {
	out := make([]int, len(notes))
	for i, n := range notes {
		out[i] = n.Chroma()
	}
	return out
}

func TestGenerateMajor(t *testing.T) {
	notes, err := Generate(note.New(note.C, 4), []int{2, 2, 1, 2, 2, 2, 1})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 2, 4, 5, 7, 9, 11}, chromas(notes)); diff != "" {
		t.Errorf("chromatic positions mismatch (-want +got):\n%s", diff)
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Name.String()
	}
	if diff := cmp.Diff([]string{"C", "D", "E", "F", "G", "A", "B"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateCarriesOctave(t *testing.T) {
	notes, err := Generate(note.New(note.A, 3), Major.Intervals())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	// A3 B3 C#4 D4 E4 F#4 G#4
	wantOctaves := []int{3, 3, 4, 4, 4, 4, 4}
	got := make([]int, len(notes))
	for i, n := range notes {
		got[i] = n.Octave
	}
	if !slices.Equal(got, wantOctaves) {
		t.Errorf("octaves = %v, want %v", got, wantOctaves)
	}
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern []int
	}{
		{"sums to 11", []int{2, 2, 1, 2, 2, 1, 1}},
		{"sums to 13", []int{2, 2, 2, 2, 2, 3}},
		{"empty", nil},
		{"zero step", []int{2, 2, 0, 3, 2, 3}},
		{"negative step", []int{14, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(note.New(note.C, 4), tt.pattern)
			if !errors.Is(err, errors.ErrCodeInvalidScaleDefinition) {
				t.Errorf("Generate(%v) error = %v, want INVALID_SCALE_DEFINITION", tt.pattern, err)
			}
		})
	}
}

func TestBuiltinPatternsSumToOctave(t *testing.T) {
	for _, typ := range Types() {
		sum := 0
		for _, step := range typ.Intervals() {
			sum += step
		}
		if sum != 12 {
			t.Errorf("%v intervals sum to %d", typ, sum)
		}
	}
}

func TestNewDegrees(t *testing.T) {
	s, err := New(note.New(note.A, 2), NaturalMinor)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.Name() != "A natural minor" {
		t.Errorf("Name() = %q", s.Name())
	}
	var abbrevs []string
	var numbers []int
	for _, d := range s.Degrees {
		abbrevs = append(abbrevs, d.Abbreviation)
		numbers = append(numbers, d.Number)
	}
	if diff := cmp.Diff([]string{"R", "2", "b3", "4", "5", "b6", "b7"}, abbrevs); diff != "" {
		t.Errorf("abbreviations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6, 7}, numbers); diff != "" {
		t.Errorf("degree numbers mismatch (-want +got):\n%s", diff)
	}
	if s.Degrees[2].Name != "minor third" || s.Degrees[2].Semitones != 3 {
		t.Errorf("third degree = %+v", s.Degrees[2])
	}
}

func TestNewModeAbbreviations(t *testing.T) {
	tests := []struct {
		typ    Type
		degree int
		want   string
	}{
		{Lydian, 4, "#4"},
		{Locrian, 5, "b5"},
		{Phrygian, 2, "b2"},
		{HarmonicMinor, 7, "7"},
		{Blues, 4, "b5"},
		{PentatonicMinor, 2, "b3"},
	}
	for _, tt := range tests {
		s := MustNew(note.New(note.C, 3), tt.typ)
		if got := s.Degrees[tt.degree-1].Abbreviation; got != tt.want {
			t.Errorf("%v degree %d = %q, want %q", tt.typ, tt.degree, got, tt.want)
		}
	}
}

func TestNewSpelling(t *testing.T) {
	tests := []struct {
		root note.Note
		typ  Type
		want []string
	}{
		{note.New(note.F, 3), Major, []string{"F", "G", "A", "Bb", "C", "D", "E"}},
		{note.New(note.G, 3), Major, []string{"G", "A", "B", "C", "D", "E", "F#"}},
		{note.New(note.D, 3), NaturalMinor, []string{"D", "E", "F", "G", "A", "Bb", "C"}},
		{note.New(note.EFlat, 3), Major, []string{"Eb", "F", "G", "Ab", "Bb", "C", "D"}},
	}
	for _, tt := range tests {
		s := MustNew(tt.root, tt.typ)
		var got []string
		for _, n := range s.Notes() {
			got = append(got, n.Name.String())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s spelling mismatch (-want +got):\n%s", s.Name(), diff)
		}
	}
}

func TestContains(t *testing.T) {
	s := MustNew(note.New(note.C, 4), Major)
	for _, n := range []note.Note{note.New(note.C, 0), note.New(note.E, 7), note.New(note.B, 2)} {
		if !Contains(s, n) {
			t.Errorf("C major should contain %v", n)
		}
	}
	for _, n := range []note.Note{note.New(note.CSharp, 4), note.New(note.BFlat, 1)} {
		if s.Contains(n) {
			t.Errorf("C major should not contain %v", n)
		}
	}
	if s.PitchSet().Len() != 7 {
		t.Errorf("PitchSet().Len() = %d, want 7", s.PitchSet().Len())
	}
	if d, ok := s.Degree(note.New(note.G, 1)); !ok || d.Number != 5 {
		t.Errorf("Degree(G) = %+v, %v; want degree 5", d, ok)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"major", Major, false},
		{"Ionian", Major, false},
		{"natural-minor", NaturalMinor, false},
		{"aeolian", NaturalMinor, false},
		{"pentatonic_minor", PentatonicMinor, false},
		{"  Harmonic   Minor ", HarmonicMinor, false},
		{"blues", Blues, false},
		{"bebop", 0, true},
		{"dominant", 0, true}, // a chord quality, not a scale
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTypeMetadata(t *testing.T) {
	if m, ok := Dorian.Mode(); !ok || m.ParentScale != Major || m.ModeNumber != 2 {
		t.Errorf("Dorian.Mode() = %+v, %v", m, ok)
	}
	if _, ok := Blues.Mode(); ok {
		t.Error("Blues should not be a mode of major")
	}
	aliases := Major.Aliases()
	aliases[0] = "mutated"
	if Major.Aliases()[0] != "ionian" {
		t.Error("Aliases() must return a copy")
	}
	if len(Mixolydian.Genres()) == 0 || len(Lydian.CharacteristicIntervals()) == 0 {
		t.Error("metadata should not be empty")
	}
}

func TestScaleJSON(t *testing.T) {
	s := MustNew(note.New(note.E, 2), PentatonicMinor)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var back Scale
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
