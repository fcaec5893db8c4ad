// Package config loads user defaults for the CLI and the explorer.
//
// Configuration lives in a TOML file at [DefaultPath] or any path given
// with --config; files ending in .yaml or .yml are read as YAML. Missing
// keys keep their defaults and unknown keys are rejected. Command-line
// flags override file values.
//
//	[fretboard]
//	tuning = "drop d"
//	end_fret = 15
//	naming = "flats"
//
//	[fingering]
//	max_span = 5
//
//	[cache]
//	ttl = "72h"
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/midi"
	"github.com/matzehuels/fretboard/pkg/pipeline"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config is the complete set of user defaults.
type Config struct {
	Fretboard FretboardConfig `toml:"fretboard" yaml:"fretboard"`
	Fingering FingeringConfig `toml:"fingering" yaml:"fingering"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	MIDI      midi.Options    `toml:"midi" yaml:"midi"`
}

// FretboardConfig holds board and display defaults.
type FretboardConfig struct {
	Tuning            string `toml:"tuning" yaml:"tuning"`
	StartFret         int    `toml:"start_fret" yaml:"start_fret"`
	EndFret           int    `toml:"end_fret" yaml:"end_fret"`
	MaxFret           int    `toml:"max_fret" yaml:"max_fret"`
	Naming            string `toml:"naming" yaml:"naming"`
	ColorScheme       string `toml:"color_scheme" yaml:"color_scheme"`
	ShowNoteNames     bool   `toml:"show_note_names" yaml:"show_note_names"`
	ShowIntervals     bool   `toml:"show_intervals" yaml:"show_intervals"`
	ShowFingers       bool   `toml:"show_fingers" yaml:"show_fingers"`
	ShowFretNumbers   bool   `toml:"show_fret_numbers" yaml:"show_fret_numbers"`
	ShowStringNumbers bool   `toml:"show_string_numbers" yaml:"show_string_numbers"`
}

// FingeringConfig holds fingering search defaults.
type FingeringConfig struct {
	MaxSpan         int  `toml:"max_span" yaml:"max_span"`
	MaxCandidates   int  `toml:"max_candidates" yaml:"max_candidates"`
	Limit           int  `toml:"limit" yaml:"limit"`
	AllowInversions bool `toml:"allow_inversions" yaml:"allow_inversions"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	// TTL caps entry lifetimes, e.g. "72h". Empty keeps the per-kind TTLs.
	TTL string `toml:"ttl" yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := fretboard.DefaultDisplay()
	return &Config{
		Fretboard: FretboardConfig{
			Tuning:          pipeline.DefaultTuning,
			EndFret:         pipeline.DefaultEndFret,
			MaxFret:         pipeline.DefaultMaxFret,
			Naming:          fretboard.NamingMixed.String(),
			ColorScheme:     fretboard.SchemeDefault.String(),
			ShowNoteNames:   d.ShowNoteNames,
			ShowFretNumbers: d.ShowFretNumbers,
		},
		Fingering: FingeringConfig{
			MaxSpan:       chord.DefaultMaxSpan,
			MaxCandidates: chord.DefaultMaxCandidates,
			Limit:         chord.DefaultLimit,
		},
		MIDI: midi.Options{
			Tempo:      midi.DefaultTempo,
			Velocity:   midi.DefaultVelocity,
			Program:    midi.Program(midi.DefaultProgram),
			StrumTicks: midi.DefaultStrumTicks,
			ChordBeats: midi.DefaultChordBeats,
			NoteBeats:  midi.DefaultNoteBeats,
		},
	}
}

// Dir returns the fretboard config directory, following XDG_CONFIG_HOME
// on Unix.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config directory")
	}
	return filepath.Join(base, "fretboard"), nil
}

// DefaultPath returns the path of the default config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config at path over the defaults. An empty path reads
// [DefaultPath] and tolerates its absence; an explicit path must exist.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		return nil
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports every problem at once as a single INVALID_CONFIG error.
func (c *Config) Validate() error {
	var errs error
	add := func(err error) { errs = multierr.Append(errs, err) }

	if _, err := tuning.Parse(c.Fretboard.Tuning); err != nil {
		add(err)
	}
	if err := errors.ValidateFretRange(c.Fretboard.StartFret, c.Fretboard.EndFret, c.Fretboard.MaxFret); err != nil {
		add(err)
	}
	if c.Fretboard.MaxFret > errors.DefaultMaxFret {
		add(errors.New(errors.ErrCodeOutOfRange, "max fret %d exceeds %d", c.Fretboard.MaxFret, errors.DefaultMaxFret))
	}
	if _, err := fretboard.ParseNaming(c.Fretboard.Naming); err != nil {
		add(err)
	}
	if _, err := fretboard.ParseColorScheme(c.Fretboard.ColorScheme); err != nil {
		add(err)
	}
	if err := c.Search().Validate(); err != nil {
		add(err)
	}
	m := c.MIDI
	if err := m.ValidateAndSetDefaults(); err != nil {
		add(err)
	}
	if c.Cache.TTL != "" {
		if d, err := time.ParseDuration(c.Cache.TTL); err != nil || d <= 0 {
			add(errors.New(errors.ErrCodeInvalidConfig, "cache ttl %q is not a positive duration", c.Cache.TTL))
		}
	}

	if errs == nil {
		return nil
	}
	n := len(multierr.Errors(errs))
	if n == 1 {
		return errors.Wrap(errors.ErrCodeInvalidConfig, errs, "invalid configuration")
	}
	return errors.Wrap(errors.ErrCodeInvalidConfig, errs, "invalid configuration (%d problems)", n)
}

// Problems splits a Validate error into its individual causes.
func Problems(err error) []error {
	return multierr.Errors(stderrors.Unwrap(err))
}

// Display returns the configured display options. Invalid names fall back
// to the defaults; Validate reports them.
func (c *Config) Display() fretboard.Display {
	naming, _ := fretboard.ParseNaming(c.Fretboard.Naming)
	scheme, _ := fretboard.ParseColorScheme(c.Fretboard.ColorScheme)
	return fretboard.Display{
		ShowNoteNames:     c.Fretboard.ShowNoteNames,
		ShowIntervals:     c.Fretboard.ShowIntervals,
		ShowFingers:       c.Fretboard.ShowFingers,
		ShowFretNumbers:   c.Fretboard.ShowFretNumbers,
		ShowStringNumbers: c.Fretboard.ShowStringNumbers,
		ColorScheme:       scheme,
		Naming:            naming,
	}
}

// Search returns the configured fingering search.
func (c *Config) Search() chord.Search {
	return chord.Search{
		MaxSpan:         c.Fingering.MaxSpan,
		MaxCandidates:   c.Fingering.MaxCandidates,
		Limit:           c.Fingering.Limit,
		AllowInversions: c.Fingering.AllowInversions,
	}.WithDefaults()
}

// CacheTTL returns the configured cap, or 0 for none.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0
	}
	return d
}

// Options returns pipeline options seeded with the configured defaults.
func (c *Config) Options() pipeline.Options {
	d := c.Display()
	return pipeline.Options{
		Tuning:          c.Fretboard.Tuning,
		StartFret:       c.Fretboard.StartFret,
		EndFret:         c.Fretboard.EndFret,
		MaxFret:         c.Fretboard.MaxFret,
		MaxSpan:         c.Fingering.MaxSpan,
		MaxCandidates:   c.Fingering.MaxCandidates,
		Limit:           c.Fingering.Limit,
		AllowInversions: c.Fingering.AllowInversions,
		Display:         &d,
		MIDI:            c.MIDI,
	}
}

// Save writes c to path as TOML, or YAML for .yaml and .yml paths,
// creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "create config directory")
	}
	var buf bytes.Buffer
	if err := c.encode(&buf, isYAML(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "write %s", path)
	}
	return nil
}

func (c *Config) encode(w io.Writer, asYAML bool) error {
	if !asYAML {
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
		}
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return nil
}
