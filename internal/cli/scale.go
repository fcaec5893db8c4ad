package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/pipeline"
	"github.com/matzehuels/fretboard/pkg/render"
	"github.com/matzehuels/fretboard/pkg/scale"
)

// scaleCommand creates the scale command.
func (c *CLI) scaleCommand() *cobra.Command {
	var (
		flags boardFlags
		info  bool
	)

	cmd := &cobra.Command{
		Use:   "scale <root> [type]",
		Short: "Show a scale on the fretboard",
		Long: `Show where the notes of a scale fall on the fretboard.

The type defaults to major and may be any built-in scale or alias, e.g.
"natural minor", dorian, "minor pentatonic" or blues. Roots are colored
separately from the other scale notes.`,
		Example: `  fretboard scale C
  fretboard scale A minor pentatonic --from 5 --to 8
  fretboard scale D dorian --intervals --tuning "drop d"
  fretboard scale E blues -f svg,midi -o e-blues`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return completeFrom(scaleCandidates)(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config().Options()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			opts.Root = args[0]
			opts.Scale = scale.Major.String()
			if len(args) > 1 {
				opts.Scale = strings.Join(args[1:], " ")
				if err := checkScale(opts.Scale); err != nil {
					return err
				}
			}

			progress := newProgress(c.Logger)
			res, err := c.execute(cmd, opts, &flags, "Computing scale")
			if err != nil {
				return err
			}
			progress.done("Computed " + res.Scale.Name())

			w := cmd.OutOrStdout()
			if flags.showSummary(opts.Formats) {
				printScaleSummary(w, render.Title(res.Fretboard), *res.Scale, info)
			}
			if err := writeArtifacts(w, res, opts.Formats, flags.output); err != nil {
				return err
			}
			if flags.showSummary(opts.Formats) {
				printBoardStats(w, res)
			}
			return nil
		},
	}

	flags.summaries = true
	flags.register(cmd)
	cmd.Flags().BoolVar(&info, "info", false, "show mode, genres and common progressions")

	return cmd
}

// printScaleSummary prints the notes and degrees of s.
func printScaleSummary(w io.Writer, title string, s scale.Scale, info bool) {
	printTitle(w, title)
	notes := make([]string, len(s.Degrees))
	degrees := make([]string, len(s.Degrees))
	for i, d := range s.Degrees {
		notes[i] = d.Note.Name.String()
		degrees[i] = d.Abbreviation
	}

	printKeyValue(w, "Notes", strings.Join(notes, " "))
	printKeyValue(w, "Degrees", strings.Join(degrees, " "))
	printKeyValue(w, "Steps", formula(s.Type.Intervals()))

	if info {
		if m, ok := s.Type.Mode(); ok {
			printKeyValue(w, "Mode", fmt.Sprintf("%s of %s", ordinal(m.ModeNumber), m.ParentScale))
		}
		if ci := s.Type.CharacteristicIntervals(); len(ci) > 0 {
			printKeyValue(w, "Character", strings.Join(ci, ", "))
		}
		if g := s.Type.Genres(); len(g) > 0 {
			printKeyValue(w, "Genres", strings.Join(g, ", "))
		}
		for i, p := range s.Type.CommonProgressions() {
			key := ""
			if i == 0 {
				key = "Progressions"
			}
			printKeyValue(w, key, strings.Join(p, " - "))
		}
	}
	fmt.Fprintln(w)
}

// formula spells a step pattern with W, H and semitone counts for
// larger steps, e.g. "W W H W W W H".
func formula(steps []int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		switch s {
		case 1:
			parts[i] = "H"
		case 2:
			parts[i] = "W"
		default:
			parts[i] = strconv.Itoa(s)
		}
	}
	return strings.Join(parts, " ")
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// printBoardStats prints the board size and cache status.
func printBoardStats(w io.Writer, res *pipeline.Result) {
	fb := res.Fretboard
	lit := 0
	for _, gs := range fb.Strings {
		for _, f := range gs.Frets {
			if f.Highlight != fretboard.HighlightNone {
				lit++
			}
		}
	}
	parts := []string{
		fmt.Sprintf("%d strings", len(fb.Strings)),
		fmt.Sprintf("frets %d-%d", fb.StartFret, fb.EndFret),
		fmt.Sprintf("%d highlighted", lit),
	}
	if res.Chord != nil {
		parts = append(parts, fmt.Sprintf("%d fingerings", res.Stats.Positions))
	}
	fmt.Fprintln(w)
	printStats(w, parts, res.CacheInfo.FretboardHit)
}
