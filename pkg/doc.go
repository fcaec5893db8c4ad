// Package pkg provides the core libraries for fretboard visualization.
//
// # Overview
//
// Fretboard places the notes of a scale or chord onto a guitar neck in a
// given tuning, finds playable chord fingerings, and renders the result.
// The pkg directory is organized into three areas:
//
//  1. Music theory: [note], [scale], [chord], [tuning]
//  2. Mapping and output: [fretboard], [render], [midi]
//  3. Orchestration: [pipeline], [cache], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Root + scale type, or chord symbol
//	         ↓
//	    [scale] / [chord] packages (build the pitch collection)
//	         ↓
//	    [chord] fingering search (playable positions, optional)
//	         ↓
//	    [fretboard] package (map onto strings and frets, classify highlights)
//	         ↓
//	    [render] / [midi] packages (text, SVG, JSON, MIDI)
//
// # Quick Start
//
// Run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(128), cache.NewDefaultKeyer(), nil)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Tuning:  "standard",
//	    Root:    "A",
//	    Scale:   "pentatonic minor",
//	    Formats: []string{"text"},
//	})
//	os.Stdout.Write(res.Artifacts["text"])
//
// Or use the building blocks directly:
//
//	s := scale.MustNew(note.New(note.G, 3), scale.PentatonicMinor)
//	fb, _ := fretboard.Compute(fretboard.Config{
//	    Tuning:  tuning.Standard,
//	    EndFret: 12,
//	    Source:  fretboard.ScaleSource{Scale: s},
//	})
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/chord/...              # Specific package
//	go test -run Example                 # Examples only
//
// [note]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/note
// [scale]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/scale
// [chord]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/chord
// [tuning]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/tuning
// [fretboard]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/fretboard
// [render]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/render
// [midi]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/midi
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/fretboard/pkg/observability
package pkg
