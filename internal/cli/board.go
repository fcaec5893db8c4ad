package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/pipeline"
	"github.com/matzehuels/fretboard/pkg/render"
)

// boardFlags are the board, display and output flags shared by the
// board, scale and chord commands. Only flags the user sets override the
// configured defaults.
type boardFlags struct {
	tuning        string
	startFret     int
	endFret       int
	naming        string
	scheme        string
	intervals     bool
	fingers       bool
	noNames       bool
	stringNumbers bool
	allNotes      bool
	interactive   bool
	selected      []string
	formats       string
	output        string
	refresh       bool

	// summaries is set by commands that print a summary above the board.
	summaries bool
}

func (f *boardFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.tuning, "tuning", "t", "", "tuning, e.g. \"drop d\" or dadgad (see 'fretboard tuning list')")
	fl.IntVar(&f.startFret, "from", 0, "first fret shown")
	fl.IntVar(&f.endFret, "to", 0, "last fret shown")
	fl.StringVar(&f.naming, "naming", "", "note spelling: mixed, sharps, flats")
	fl.StringVar(&f.scheme, "scheme", "", "color scheme: default, colorBlind, dark, light")
	fl.BoolVarP(&f.intervals, "intervals", "i", false, "label frets with intervals instead of note names")
	fl.BoolVar(&f.fingers, "fingers", false, "label frets with finger numbers")
	fl.BoolVar(&f.noNames, "no-names", false, "hide note names")
	fl.BoolVar(&f.stringNumbers, "string-numbers", false, "show string numbers")
	fl.BoolVar(&f.allNotes, "all-notes", false, "label every fret, not only highlighted ones")
	fl.BoolVar(&f.interactive, "interactive", false, "add hover styling and scripts to SVG output")
	fl.StringSliceVarP(&f.selected, "select", "s", nil, "mark notes as selected (comma-separated)")
	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): text (default), svg, json, midi (comma-separated)")
	fl.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute instead of reading cached results")

	_ = cmd.RegisterFlagCompletionFunc("tuning", completeFrom(tuningCandidates))
	_ = cmd.RegisterFlagCompletionFunc("naming", completeFrom(func() []string { return []string{"mixed", "sharps", "flats"} }))
	_ = cmd.RegisterFlagCompletionFunc("scheme", completeFrom(func() []string { return []string{"default", "colorBlind", "dark", "light"} }))
	_ = cmd.RegisterFlagCompletionFunc("format", completeFrom(func() []string {
		return []string{pipeline.FormatText, pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatMIDI}
	}))
}

// apply overlays the flags the user set on opts.
func (f *boardFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	fl := cmd.Flags()
	if fl.Changed("tuning") {
		if err := checkTuning(f.tuning); err != nil {
			return err
		}
		opts.Tuning = f.tuning
	}
	if fl.Changed("from") {
		opts.StartFret = f.startFret
		if !fl.Changed("to") && opts.EndFret < opts.StartFret {
			opts.EndFret = min(opts.StartFret+pipeline.DefaultEndFret, cmp.Or(opts.MaxFret, pipeline.DefaultMaxFret))
		}
	}
	if fl.Changed("to") {
		opts.EndFret = f.endFret
	}

	d := fretboard.DefaultDisplay()
	if opts.Display != nil {
		d = *opts.Display
	}
	if fl.Changed("naming") {
		n, err := fretboard.ParseNaming(f.naming)
		if err != nil {
			return err
		}
		d.Naming = n
	}
	if fl.Changed("scheme") {
		s, err := fretboard.ParseColorScheme(f.scheme)
		if err != nil {
			return err
		}
		d.ColorScheme = s
	}
	if fl.Changed("intervals") {
		d.ShowIntervals = f.intervals
	}
	if fl.Changed("fingers") {
		d.ShowFingers = f.fingers
	}
	if fl.Changed("no-names") {
		d.ShowNoteNames = !f.noNames
	}
	if fl.Changed("string-numbers") {
		d.ShowStringNumbers = f.stringNumbers
	}
	opts.Display = &d

	opts.Selected = f.selected
	opts.Refresh = f.refresh

	formats, err := parseFormats(f.formats)
	if err != nil {
		return err
	}
	opts.Formats = formats
	return nil
}

// renderOptions returns renderer options for the chosen destination.
func (f *boardFlags) renderOptions(out io.Writer) render.Options {
	dest := out
	if f.output != "" {
		dest = io.Discard
	}
	text := []render.TextOption{render.WithRenderer(boardRenderer(dest))}
	if f.allNotes {
		text = append(text, render.WithAllNotes())
	}
	if f.summaries && f.output == "" {
		text = append(text, render.WithTitle(false))
	}
	var svg []render.SVGOption
	if f.interactive {
		svg = append(svg, render.WithInteraction())
	}
	return render.Options{Text: text, SVG: svg}
}

// showSummary reports whether a human-readable summary should precede the
// board: only when a text board alone goes to the output stream.
func (f *boardFlags) showSummary(formats []string) bool {
	return f.summaries && f.output == "" && len(formats) == 1 && formats[0] == pipeline.FormatText
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.FormatText}, nil
	}
	var formats []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			formats = append(formats, part)
		}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// boardCommand creates the board command.
func (c *CLI) boardCommand() *cobra.Command {
	var (
		flags boardFlags
		root  string
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the fretboard of a tuning",
		Long: `Show the fretboard of a tuning without a scale or chord.

With --root every fret is labeled by its interval from that note, which
is useful for learning a key's geography. Selected notes are marked on
every string.`,
		Example: `  fretboard board
  fretboard board --tuning "drop d" --to 5
  fretboard board --root D --intervals
  fretboard board --select C,E,G --all-notes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config().Options()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Root = root
			res, err := c.execute(cmd, opts, &flags, "Computing board")
			if err != nil {
				return err
			}
			return writeArtifacts(cmd.OutOrStdout(), res, opts.Formats, flags.output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&root, "root", "r", "", "label frets by interval from this note")

	return cmd
}

// execute runs the pipeline for one command invocation.
func (c *CLI) execute(cmd *cobra.Command, opts pipeline.Options, flags *boardFlags, what string) (*pipeline.Result, error) {
	opts.Logger = c.Logger
	opts.Render = flags.renderOptions(cmd.OutOrStdout())

	runner, err := c.newRunner()
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	spinner := newSpinner(cmd.Context(), cmd.ErrOrStderr(), what+"...")
	spinner.Start()
	res, err := runner.Execute(cmd.Context(), opts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// =============================================================================
// Artifact Output
// =============================================================================

var formatExtensions = map[string]string{
	pipeline.FormatText: ".txt",
	pipeline.FormatSVG:  ".svg",
	pipeline.FormatJSON: ".json",
	pipeline.FormatMIDI: ".mid",
}

// writeArtifacts writes the rendered formats. Without an output path they
// go to w; a single format is written to output as given, several are
// written next to each other as base.ext.
func writeArtifacts(w io.Writer, res *pipeline.Result, formats []string, output string) error {
	if output == "" {
		for _, f := range formats {
			if f == pipeline.FormatMIDI && isTerminal(w) {
				return errors.New(errors.ErrCodeInvalidInput, "refusing to write MIDI to a terminal; use --output")
			}
			if _, err := w.Write(res.Artifacts[f]); err != nil {
				return err
			}
		}
		return nil
	}

	if len(formats) == 1 {
		if err := writeFile(output, res.Artifacts[formats[0]]); err != nil {
			return err
		}
		printFile(w, output)
		return nil
	}

	base := basePath(output)
	for _, f := range formats {
		path := base + formatExtensions[f]
		if err := writeFile(path, res.Artifacts[f]); err != nil {
			return err
		}
		printFile(w, path)
	}
	return nil
}

// basePath strips a known format extension from output.
func basePath(output string) string {
	ext := strings.ToLower(filepath.Ext(output))
	for _, known := range formatExtensions {
		if ext == known {
			return strings.TrimSuffix(output, filepath.Ext(output))
		}
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// completeFrom adapts a candidate list to a cobra completion function.
func completeFrom(candidates func() []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, c := range candidates() {
			if strings.HasPrefix(strings.ToLower(c), strings.ToLower(toComplete)) {
				out = append(out, c)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
