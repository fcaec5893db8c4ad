package pipeline

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/fretboard/pkg/cache"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/observability"
)

func newTestRunner() *Runner {
	return NewRunner(cache.NewMemoryCache(0), nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestExecuteScale(t *testing.T) {
	r := newTestRunner()
	defer r.Close()
	ctx := context.Background()
	opts := Options{Root: "C", Scale: "major"}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Scale == nil || res.Scale.Name() != "C major" {
		t.Fatalf("scale = %v", res.Scale)
	}
	f, ok := res.Fretboard.FretAt(fretboard.Coord{String: 6, Fret: 8})
	if !ok || f.Highlight != fretboard.HighlightRoot {
		t.Errorf("low E fret 8 = %+v, want root", f)
	}
	if res.CacheInfo.SourceHit || res.CacheInfo.FretboardHit {
		t.Errorf("first run hit the cache: %+v", res.CacheInfo)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("artifacts rendered without formats: %v", res.Artifacts)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.SourceHit || !again.CacheInfo.FretboardHit {
		t.Errorf("second run missed the cache: %+v", again.CacheInfo)
	}
	if diff := cmp.Diff(res.Fretboard, again.Fretboard); diff != "" {
		t.Errorf("cached fretboard differs (-computed +cached):\n%s", diff)
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fresh.CacheInfo.SourceHit || fresh.CacheInfo.FretboardHit {
		t.Errorf("refresh read the cache: %+v", fresh.CacheInfo)
	}
}

func TestExecuteChordVoicing(t *testing.T) {
	r := newTestRunner()
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{Chord: "C", Voicing: 1, EndFret: 5})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Chord == nil || res.Stats.Positions == 0 {
		t.Fatalf("chord has no positions: %+v", res.Chord)
	}
	if res.Position == nil || res.Position.String() != "x32010" {
		t.Fatalf("voicing 1 = %v, want x32010", res.Position)
	}
	low, _ := res.Fretboard.StringAt(6)
	if !low.Muted {
		t.Error("low E not muted for x32010")
	}
	f, _ := res.Fretboard.FretAt(fretboard.Coord{String: 5, Fret: 3})
	if f.Finger != 3 || f.Highlight != fretboard.HighlightRoot {
		t.Errorf("A string fret 3 = %+v, want root with finger 3", f)
	}
}

func TestExecuteChordAllTones(t *testing.T) {
	r := newTestRunner()
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{Root: "G", Chord: "dominant", Extensions: []string{"9"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Position != nil {
		t.Errorf("position set without voicing: %v", res.Position)
	}
	if got := res.Chord.Symbol(); got != "G7(9)" {
		t.Errorf("symbol = %q", got)
	}
	if n := len(res.Fretboard.Highlighted(fretboard.HighlightChordTone)); n == 0 {
		t.Error("no chord tones highlighted")
	}
}

func TestExecuteVoicingOutOfRange(t *testing.T) {
	r := newTestRunner()
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{Chord: "C", Voicing: 30})
	if !errors.Is(err, errors.ErrCodeOutOfRange) {
		t.Errorf("got %v, want OUT_OF_RANGE", err)
	}
}

func TestExecuteNoFingeringFallsBack(t *testing.T) {
	r := newTestRunner()
	defer r.Close()

	// A span of one fret cannot hold a C major triad with C in the bass.
	res, err := r.Execute(context.Background(), Options{Chord: "C", Voicing: 1, MaxSpan: 1, FingerStartFret: 9})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Position != nil || len(res.Chord.Positions) != 0 {
		t.Errorf("expected no positions, got %v", res.Chord.Positions)
	}
	if len(res.Fretboard.Highlighted(fretboard.HighlightRoot)) == 0 {
		t.Error("fallback board has no root highlights")
	}
}

func TestExecuteIntervals(t *testing.T) {
	r := newTestRunner()
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{Root: "E", EndFret: 4})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Fretboard.Kind() != fretboard.SourceNone || res.Fretboard.Root == nil {
		t.Fatalf("want interval mode, got kind %v root %v", res.Fretboard.Kind(), res.Fretboard.Root)
	}
	f, _ := res.Fretboard.FretAt(fretboard.Coord{String: 6, Fret: 3})
	if f.Highlight != fretboard.HighlightInterval || f.Interval != "b3" {
		t.Errorf("low E fret 3 = %+v, want interval b3", f)
	}
}

func TestExecuteFormats(t *testing.T) {
	r := newTestRunner()
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Root: "A", Scale: "minor pentatonic", StartFret: 5, EndFret: 8,
		Formats: []string{FormatText, FormatSVG, FormatJSON, FormatMIDI},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	checks := map[string][]byte{
		FormatText: []byte("A pentatonic minor"),
		FormatSVG:  []byte("<svg"),
		FormatJSON: []byte(`"tuning"`),
		FormatMIDI: []byte("MThd"),
	}
	for format, want := range checks {
		if !bytes.Contains(res.Artifacts[format], want) {
			t.Errorf("%s artifact missing %q", format, want)
		}
	}
}

func TestExecuteHooks(t *testing.T) {
	counters := observability.NewCounters()
	observability.SetEngineHooks(counters)
	observability.SetCacheHooks(counters)
	observability.SetExportHooks(counters)
	defer observability.Reset()

	r := newTestRunner()
	defer r.Close()
	opts := Options{Chord: "Am", Formats: []string{FormatJSON}}
	for range 2 {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}

	s := counters.Snapshot()
	if s.Computes != 2 {
		t.Errorf("computes = %d, want chord and fretboard once", s.Computes)
	}
	if s.Searches != 1 {
		t.Errorf("fingering searches = %d, want 1", s.Searches)
	}
	if s.CacheHits != 2 || s.CacheMisses != 2 {
		t.Errorf("hits/misses = %d/%d, want 2/2", s.CacheHits, s.CacheMisses)
	}
	if s.Exports != 2 {
		t.Errorf("exports = %d, want 2", s.Exports)
	}
}

func TestConcurrentIdenticalRequests(t *testing.T) {
	r := newTestRunner()
	defer r.Close()
	opts := Options{Root: "D", Scale: "dorian", EndFret: 15, Selected: []string{"F"}}

	const n = 16
	var wg sync.WaitGroup
	results := make([]*Result, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.Execute(context.Background(), opts)
		}()
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if diff := cmp.Diff(results[0].Fretboard, results[i].Fretboard); diff != "" {
			t.Errorf("request %d differs:\n%s", i, diff)
		}
	}
}

func TestExecuteCanceled(t *testing.T) {
	r := newTestRunner()
	defer r.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Execute(ctx, Options{Root: "C", Scale: "major"}); err == nil {
		t.Error("Execute succeeded on a canceled context")
	}
}

func TestRunnerStages(t *testing.T) {
	r := newTestRunner()
	defer r.Close()
	ctx := context.Background()

	c, err := r.Chord(ctx, Options{Chord: "E"})
	if err != nil {
		t.Fatalf("Chord: %v", err)
	}
	if len(c.Positions) == 0 || c.Positions[0].String() != "022100" {
		t.Errorf("E positions = %v", c.Positions)
	}
	if _, err := r.Scale(ctx, Options{Chord: "E"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Scale on a chord request = %v", err)
	}
	if _, err := r.Chord(ctx, Options{Root: "C", Scale: "major"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Chord on a scale request = %v", err)
	}
}
