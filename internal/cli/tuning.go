package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// tuningCommand creates the tuning command group.
func (c *CLI) tuningCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tuning",
		Short: "List and inspect guitar tunings",
	}

	cmd.AddCommand(c.tuningListCommand())
	cmd.AddCommand(c.tuningShowCommand())

	return cmd
}

func (c *CLI) tuningListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the built-in tunings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, _ := tuning.Parse(c.config().Fretboard.Tuning)

			var rows [][]string
			for _, t := range tuning.All() {
				marker := ""
				if t.Name == current {
					marker = "▸"
				}
				rows = append(rows, []string{
					marker,
					t.Name.String(),
					noteNames(t.StringNotes),
					strings.Join(t.Aliases, ", "),
					strings.Join(t.Genres, ", "),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"", "Tuning", "Strings", "Aliases", "Genres"}, rows)
			return nil
		},
	}
}

func (c *CLI) tuningShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Short:             "Show the strings of a tuning and how to reach it from standard",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFrom(tuningCandidates),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkTuning(args[0]); err != nil {
				return err
			}
			name, _ := tuning.Parse(args[0])
			t, err := tuning.Get(name)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTitle(w, t.Name.String())
			printKeyValue(w, "Strings", noteNames(t.StringNotes))

			octaves := make([]string, len(t.StringNotes))
			for i, n := range t.StringNotes {
				octaves[i] = n.String()
			}
			printKeyValue(w, "Pitches", strings.Join(octaves, " "))

			gaps := make([]string, len(t.StringIntervals))
			for i, s := range t.StringIntervals {
				gaps[i] = note.IntervalAbbrev(s) + " (" + strconv.Itoa(s) + ")"
			}
			printKeyValue(w, "Intervals", strings.Join(gaps, " "))
			if len(t.Aliases) > 0 {
				printKeyValue(w, "Aliases", strings.Join(t.Aliases, ", "))
			}
			if len(t.Genres) > 0 {
				printKeyValue(w, "Genres", strings.Join(t.Genres, ", "))
			}
			if len(t.FavorableChords) > 0 {
				printKeyValue(w, "Chords", strings.Join(t.FavorableChords, " "))
			}
			if len(t.FamousUses) > 0 {
				fmt.Fprintln(w)
				printInfo(w, "Famous uses:")
				for _, f := range t.FamousUses {
					printDetail(w, "%s - %s", f.Artist, f.Song)
				}
			}

			if len(t.Steps) == 0 {
				return nil
			}
			fmt.Fprintln(w)
			printInfo(w, "From standard tuning:")
			for _, s := range t.Steps {
				printDetail(w, "string %d %s %d semitone(s) to %s", s.String, s.Direction, s.Semitones, s.Target.Name)
			}
			return nil
		},
	}
}

func noteNames(notes []note.Note) string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Name.String()
	}
	return strings.Join(names, " ")
}
