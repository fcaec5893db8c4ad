package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/render"
)

// chordCommand creates the chord command.
func (c *CLI) chordCommand() *cobra.Command {
	var (
		flags  boardFlags
		search struct {
			voicing    int
			span       int
			at         int
			limit      int
			inversions bool
		}
		extensions  []string
		alterations []string
		info        bool
	)

	cmd := &cobra.Command{
		Use:   "chord <symbol> | chord <root> <quality>",
		Short: "Show a chord and its fingerings",
		Long: `Show the tones of a chord, the playable fingerings found for it, and
one fingering on the fretboard.

A chord is given as a symbol such as Am7 or F#dim7, or as a root followed
by a quality name such as "C half-diminished". Extensions (9, 11, 13,
add9) and alterations (b5, #5, b9, #9, #11, b13) are added with --ext and
--alt.

Fingerings are searched in a window of --span frets starting at --at.
--voicing picks which ranked fingering is drawn; 0 draws every chord tone
on the neck instead.`,
		Example: `  fretboard chord C
  fretboard chord Am7 --fingers
  fretboard chord G dominant --ext 9
  fretboard chord E minor --at 7 --voicing 2
  fretboard chord D --voicing 0 --intervals
  fretboard chord Dm7 --info
  fretboard chord Cmaj7 -f midi -o cmaj7.mid`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return completeFrom(qualityCandidates)(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config().Options()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}

			opts.Chord = args[0]
			if len(args) == 2 {
				if err := checkQuality(args[1]); err != nil {
					return err
				}
				opts.Root, opts.Chord = args[0], args[1]
			}
			opts.Extensions = extensions
			opts.Alterations = alterations
			opts.Voicing = search.voicing
			fl := cmd.Flags()
			if fl.Changed("span") {
				opts.MaxSpan = search.span
			}
			if fl.Changed("at") {
				opts.FingerStartFret = search.at
			}
			if fl.Changed("limit") {
				opts.Limit = search.limit
			}
			if fl.Changed("inversions") {
				opts.AllowInversions = search.inversions
			}
			if opts.Voicing > 0 && !fl.Changed("fingers") {
				d := *opts.Display
				d.ShowFingers = true
				opts.Display = &d
			}

			progress := newProgress(c.Logger)
			res, err := c.execute(cmd, opts, &flags, "Searching fingerings")
			if err != nil {
				return err
			}
			progress.done(fmt.Sprintf("Found %d fingerings for %s", res.Stats.Positions, res.Chord.Symbol()))

			w := cmd.OutOrStdout()
			if flags.showSummary(opts.Formats) {
				printChordSummary(w, render.Title(res.Fretboard), *res.Chord, opts.Voicing, info)
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
	fl := cmd.Flags()
	fl.StringSliceVar(&extensions, "ext", nil, "extensions: 9, 11, 13, add9 (comma-separated)")
	fl.StringSliceVar(&alterations, "alt", nil, "alterations: b5, #5, b9, #9, #11, b13 (comma-separated)")
	fl.IntVarP(&search.voicing, "voicing", "V", 1, "fingering to draw (1 = easiest, 0 = all chord tones)")
	fl.IntVar(&search.span, "span", chord.DefaultMaxSpan, "fret window width for the fingering search")
	fl.IntVar(&search.at, "at", 0, "lowest fret of the fingering search (0 includes open strings)")
	fl.IntVar(&search.limit, "limit", chord.DefaultLimit, "number of fingerings listed")
	fl.BoolVar(&search.inversions, "inversions", false, "allow a chord tone other than the root in the bass")
	fl.BoolVar(&info, "info", false, "also list common progressions using the chord")

	return cmd
}

// printChordSummary prints the tones and ranked fingerings of c. With info
// set it also lists the progressions the chord commonly appears in.
func printChordSummary(w io.Writer, title string, c chord.Chord, voicing int, info bool) {
	printTitle(w, title)
	printKeyValue(w, "Name", c.FullName())

	names := make([]string, len(c.Tones))
	labels := make([]string, len(c.Tones))
	for i, t := range c.Tones {
		names[i] = t.Note.Name.String()
		labels[i] = t.Label
	}
	printKeyValue(w, "Tones", strings.Join(names, " "))
	printKeyValue(w, "Formula", strings.Join(labels, " "))
	printKeyValue(w, "Difficulty", c.Difficulty.String())
	if info && len(c.CommonProgressions) > 0 {
		printKeyValue(w, "Progressions", strings.Join(c.CommonProgressions, ", "))
	}

	if len(c.Positions) == 0 {
		printWarning(w, "No playable fingering in the search window; showing every chord tone")
		fmt.Fprintln(w)
		return
	}

	rows := make([][]string, len(c.Positions))
	for i, p := range c.Positions {
		marker := ""
		if i+1 == voicing {
			marker = "▸"
		}
		barre := "-"
		if p.Barre > 0 {
			barre = strconv.Itoa(p.Barre)
		}
		rows[i] = []string{
			marker,
			strconv.Itoa(i + 1),
			p.String(),
			strconv.Itoa(p.StartFret),
			p.Voicing.String(),
			barre,
			strconv.Itoa(p.FingerCount()),
		}
	}
	printTable(w, []string{"", "#", "Shape", "Fret", "Voicing", "Barre", "Fingers"}, rows)
	fmt.Fprintln(w)
}
