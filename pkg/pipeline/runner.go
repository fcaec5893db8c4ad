package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/fretboard/pkg/cache"
	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/midi"
	"github.com/matzehuels/fretboard/pkg/observability"
	"github.com/matzehuels/fretboard/pkg/render"
	"github.com/matzehuels/fretboard/pkg/scale"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, the logger and the
// in-flight call table. Multiple goroutines can safely use the same Runner
// with different options; identical concurrent requests share one
// computation, so results must be treated as read-only.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	group singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete source → compute → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Source
	sourceStart := time.Now()
	var src fretboard.Source = fretboard.NoSource{}
	sourceKey := "none"
	switch {
	case opts.HasScale():
		s, hit, err := r.ScaleWithCacheInfo(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		result.Scale = &s
		result.CacheInfo.SourceHit = hit
		src = fretboard.ScaleSource{Scale: s}
		sourceKey = "scale:" + r.Keyer.ScaleKey(opts.ScaleKeyOpts())
	case opts.HasChord():
		c, hit, err := r.ChordWithCacheInfo(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("chord: %w", err)
		}
		result.Chord = &c
		result.CacheInfo.SourceHit = hit
		result.Stats.Positions = len(c.Positions)

		cs := fretboard.ChordSource{Chord: c}
		if opts.Voicing > 0 {
			pos, err := pickVoicing(c, opts.Voicing)
			if err != nil {
				return nil, err
			}
			if pos == nil {
				opts.Logger.Warn("no fingering found, showing all chord tones", "chord", c.Symbol())
			}
			cs.Position = pos
			result.Position = pos
		}
		src = cs
		sourceKey = "chord:" + r.Keyer.ChordKey(opts.ChordKeyOpts())
		if cs.Position != nil {
			sourceKey += "@" + strconv.Itoa(opts.Voicing)
		}
	}
	result.Stats.SourceTime = time.Since(sourceStart)
	if result.Scale != nil || result.Chord != nil {
		opts.Logger.Debug("resolved source",
			"kind", src.Kind(),
			"cached", result.CacheInfo.SourceHit,
			"duration", result.Stats.SourceTime)
	}

	// Stage 2: Compute
	computeStart := time.Now()
	fb, hit, err := r.FretboardWithCacheInfo(ctx, opts, src, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	result.Fretboard = fb
	result.CacheInfo.FretboardHit = hit
	result.Stats.ComputeTime = time.Since(computeStart)

	opts.Logger.Debug("computed fretboard",
		"tuning", fb.Tuning,
		"frets", fmt.Sprintf("%d-%d", fb.StartFret, fb.EndFret),
		"cached", hit,
		"duration", result.Stats.ComputeTime)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := r.Render(ctx, result, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		opts.Logger.Debug("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// pickVoicing returns the n-th position (1-based). A chord without
// positions yields nil so that callers can fall back to all tones.
func pickVoicing(c chord.Chord, n int) (*chord.Position, error) {
	if len(c.Positions) == 0 {
		return nil, nil
	}
	if n > len(c.Positions) {
		return nil, errors.New(errors.ErrCodeOutOfRange, "voicing %d requested, %s has %d", n, c.Symbol(), len(c.Positions))
	}
	p := c.Positions[n-1]
	return &p, nil
}

// ScaleWithCacheInfo builds the requested scale with caching and returns
// cache hit info.
func (r *Runner) ScaleWithCacheInfo(ctx context.Context, opts Options) (scale.Scale, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return scale.Scale{}, false, err
	}
	if !opts.HasScale() {
		return scale.Scale{}, false, errors.New(errors.ErrCodeInvalidInput, "no scale requested")
	}
	key := r.Keyer.ScaleKey(opts.ScaleKeyOpts())
	return cached(ctx, r, opts, key, "scale", cache.TTLScale, func() (scale.Scale, error) {
		return scale.New(*opts.resolved.root, opts.resolved.scale)
	})
}

// Scale is a convenience wrapper that calls ScaleWithCacheInfo and discards the cache hit info.
func (r *Runner) Scale(ctx context.Context, opts Options) (scale.Scale, error) {
	s, _, err := r.ScaleWithCacheInfo(ctx, opts)
	return s, err
}

// ChordWithCacheInfo builds the requested chord and searches its
// fingerings with caching. A chord without any playable fingering is
// returned without positions.
func (r *Runner) ChordWithCacheInfo(ctx context.Context, opts Options) (chord.Chord, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return chord.Chord{}, false, err
	}
	if !opts.HasChord() {
		return chord.Chord{}, false, errors.New(errors.ErrCodeInvalidInput, "no chord requested")
	}
	res := opts.resolved
	key := r.Keyer.ChordKey(opts.ChordKeyOpts())
	return cached(ctx, r, opts, key, "chord", cache.TTLChord, func() (chord.Chord, error) {
		c, err := chord.Build(*res.root, res.quality, res.extensions, res.alterations)
		if err != nil {
			return chord.Chord{}, err
		}
		opens, err := tuning.StringNotes(res.tuning)
		if err != nil {
			return chord.Chord{}, err
		}

		start := time.Now()
		withPos, err := chord.WithFingerings(c, opens, res.search)
		observability.Engine().OnFingeringSearch(ctx, c.Symbol(), len(withPos.Positions), time.Since(start), err)
		switch {
		case errors.IsRecoverable(err):
			opts.Logger.Warn("no playable fingering", "chord", c.Symbol(), "tuning", res.tuning)
			return c, nil
		case err != nil:
			return chord.Chord{}, err
		}
		opts.Logger.Debug("found fingerings", "chord", c.Symbol(), "positions", len(withPos.Positions))
		return withPos, nil
	})
}

// Chord is a convenience wrapper that calls ChordWithCacheInfo and discards the cache hit info.
func (r *Runner) Chord(ctx context.Context, opts Options) (chord.Chord, error) {
	c, _, err := r.ChordWithCacheInfo(ctx, opts)
	return c, err
}

// FretboardWithCacheInfo computes the board for an already resolved source
// with caching. sourceKey must describe src canonically.
func (r *Runner) FretboardWithCacheInfo(ctx context.Context, opts Options, src fretboard.Source, sourceKey string) (fretboard.Fretboard, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fretboard.Fretboard{}, false, err
	}
	key := r.Keyer.FretboardKey(opts.FretboardKeyOpts(sourceKey))
	return cached(ctx, r, opts, key, "fretboard", cache.TTLFretboard, func() (fretboard.Fretboard, error) {
		return fretboard.Compute(opts.Config(src))
	})
}

// Config assembles the engine configuration for src.
func (o *Options) Config(src fretboard.Source) fretboard.Config {
	cfg := fretboard.Config{
		Tuning:    o.resolved.tuning,
		StartFret: o.StartFret,
		EndFret:   o.EndFret,
		MaxFret:   o.MaxFret,
		Source:    src,
		Selected:  o.resolved.selected,
		Hovered:   o.Hover,
		Pressed:   o.Pressed,
		Display:   o.resolved.display,
	}
	if _, none := src.(fretboard.NoSource); none || src == nil {
		cfg.Root = o.resolved.root
	}
	return cfg
}

// cached returns the value stored under key, or computes, stores and
// returns it. Concurrent callers with the same key share one computation.
func cached[T any](ctx context.Context, r *Runner, opts Options, key, keyType string, ttl time.Duration, compute func() (T, error)) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				observability.Cache().OnCacheHit(ctx, keyType)
				return v, true, nil
			}
			// If deserialization fails, fall through to recompute
			opts.Logger.Debug("discarding unreadable cache entry", "type", keyType)
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "type", keyType, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		hooks := observability.Engine()
		hooks.OnComputeStart(ctx, keyType)
		start := time.Now()
		res, err := compute()
		hooks.OnComputeComplete(ctx, keyType, time.Since(start), err)
		if err != nil {
			return res, err
		}
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, ttl); err == nil {
				observability.Cache().OnCacheSet(ctx, keyType, len(data))
			} else {
				opts.Logger.Debug("cache write failed", "type", keyType, "err", err)
			}
		}
		return res, nil
	})
	if err != nil {
		return zero, false, err
	}
	return v.(T), false, nil
}

// Render produces every format in opts.Formats for a computed result.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		start := time.Now()
		data, err := r.renderOne(res, format, opts)
		observability.Export().OnExport(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func (r *Runner) renderOne(res *Result, format string, opts Options) ([]byte, error) {
	if format != FormatMIDI {
		return render.Render(res.Fretboard, render.Format(format), opts.Render)
	}
	switch {
	case res.Chord != nil:
		c := *res.Chord
		if res.Position != nil {
			c.Positions = []chord.Position{*res.Position}
		}
		opens, err := tuning.StringNotes(res.Fretboard.Tuning)
		if err != nil {
			return nil, err
		}
		s, err := midi.Chord(c, opens, opts.MIDI)
		if err != nil {
			return nil, err
		}
		return midi.Encode(s)
	case res.Scale != nil:
		s, err := midi.Scale(*res.Scale, opts.MIDI)
		if err != nil {
			return nil, err
		}
		return midi.Encode(s)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "midi output needs a scale or chord")
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
