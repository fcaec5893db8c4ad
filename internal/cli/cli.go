// Package cli implements the fretboard command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/buildinfo"
	"github.com/matzehuels/fretboard/pkg/cache"
	"github.com/matzehuels/fretboard/pkg/config"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/observability"
	"github.com/matzehuels/fretboard/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "fretboard"

	// exploreCacheEntries bounds the in-memory cache of the explorer.
	exploreCacheEntries = 512
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        *config.Config
	counters   *observability.Counters
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Fretboard maps scales and chords onto a guitar neck",
		Long: `Fretboard shows where the notes of a scale or chord fall on a guitar
neck in any common tuning, finds playable chord fingerings, and exports
boards as text, SVG, JSON or MIDI.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { c.logStats() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+defaultConfigHint()+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.boardCommand())
	root.AddCommand(c.scaleCommand())
	root.AddCommand(c.chordCommand())
	root.AddCommand(c.tuningCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and, at debug level, starts counting
// engine and cache activity.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		// Let the user repair a broken file with the config commands.
		if cmd.Parent() == nil || cmd.Parent().Name() != "config" {
			return err
		}
		c.Logger.Warn("ignoring invalid configuration", "err", err)
		cfg = config.Default()
	}
	c.cfg = cfg

	if c.Logger.GetLevel() <= log.DebugLevel && c.counters == nil {
		c.counters = observability.NewCounters()
		observability.SetEngineHooks(c.counters)
		observability.SetCacheHooks(c.counters)
		observability.SetExportHooks(c.counters)
	}
	return nil
}

// config returns the loaded configuration, or the defaults before setup.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the file cache.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	cc, err := c.newCache()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache() (cache.Cache, error) {
	cfg := c.config()
	if c.noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open cache %s", dir)
	}
	return cache.WithMaxTTL(fc, cfg.CacheTTL()), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/fretboard/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.config().Cache.Dir; dir != "" {
		return expandHome(dir)
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPathOrDefault returns the --config path or the default location.
func (c *CLI) configPathOrDefault() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

func defaultConfigHint() string {
	if p, err := config.DefaultPath(); err == nil {
		return p
	}
	return filepath.Join("$XDG_CONFIG_HOME", appName, config.FileName)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// Errors
// =============================================================================

// ErrorMessage formats err for the terminal.
func ErrorMessage(err error) string {
	if errors.GetCode(err) == errors.ErrCodeInternal {
		return styleIconError.Render(iconError) + " " + err.Error()
	}
	var b strings.Builder
	b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(err))
	for _, d := range errors.Details(err) {
		b.WriteString("\n  " + StyleDim.Render(iconBullet) + " " + d)
	}
	return b.String()
}
