package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/midi"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"svg", false},
		{"json", false},
		{"midi", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "text"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Tuning != DefaultTuning || opts.EndFret != DefaultEndFret || opts.MaxFret != DefaultMaxFret {
		t.Errorf("defaults not applied: tuning %q, end %d, max %d", opts.Tuning, opts.EndFret, opts.MaxFret)
	}
	if opts.TuningName() != tuning.Standard {
		t.Errorf("TuningName = %v, want Standard", opts.TuningName())
	}
	if diff := cmp.Diff(fretboard.DefaultDisplay(), *opts.Display); diff != "" {
		t.Errorf("display (-want +got):\n%s", diff)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}

	// Idempotent: a second call keeps the applied values.
	opts.EndFret = 99
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown tuning", Options{Tuning: "nashville"}, errors.ErrCodeUnknownTuning},
		{"reversed range", Options{StartFret: 5, EndFret: 2}, errors.ErrCodeOutOfRange},
		{"past max", Options{EndFret: 30}, errors.ErrCodeOutOfRange},
		{"scale and chord", Options{Root: "C", Scale: "major", Chord: "major"}, errors.ErrCodeInvalidInput},
		{"scale without root", Options{Scale: "major"}, errors.ErrCodeInvalidInput},
		{"unknown scale", Options{Root: "C", Scale: "bebop"}, errors.ErrCodeInvalidInput},
		{"bad root", Options{Root: "H", Scale: "major"}, errors.ErrCodeInvalidInput},
		{"unknown quality", Options{Root: "C", Chord: "weird"}, errors.ErrCodeInvalidInput},
		{"extension without chord", Options{Extensions: []string{"9"}}, errors.ErrCodeInvalidInput},
		{"voicing without chord", Options{Root: "C", Scale: "major", Voicing: 1}, errors.ErrCodeInvalidInput},
		{"negative voicing", Options{Chord: "C", Voicing: -1}, errors.ErrCodeInvalidInput},
		{"bad span", Options{Chord: "C", MaxSpan: 9}, errors.ErrCodeInvalidInput},
		{"bad selection", Options{Selected: []string{"X"}}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidInput},
		{"midi without source", Options{Formats: []string{"midi"}}, errors.ErrCodeInvalidInput},
		{"bad midi", Options{Chord: "C", MIDI: midi.Options{Channel: 16}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestChordSymbolOrQuality(t *testing.T) {
	bySymbol := Options{Chord: "F#m7"}
	if err := bySymbol.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	byQuality := Options{Root: "F#", Chord: "m7"}
	if err := byQuality.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bySymbol.ChordKeyOpts(), byQuality.ChordKeyOpts()); diff != "" {
		t.Errorf("symbol and root+quality differ (-symbol +quality):\n%s", diff)
	}
}

func TestFretboardKeyOpts(t *testing.T) {
	a := Options{Pressed: []fretboard.Coord{{String: 2, Fret: 1}, {String: 1, Fret: 3}}}
	b := Options{Pressed: []fretboard.Coord{{String: 1, Fret: 3}, {String: 2, Fret: 1}}}
	for _, o := range []*Options{&a, &b} {
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(a.FretboardKeyOpts("none"), b.FretboardKeyOpts("none")); diff != "" {
		t.Errorf("press order changes the key:\n%s", diff)
	}

	c := Options{Hover: &fretboard.Coord{String: 1, Fret: 0}}
	if err := c.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if c.FretboardKeyOpts("none").Hover != "1:0" {
		t.Errorf("hover key = %q", c.FretboardKeyOpts("none").Hover)
	}
}
