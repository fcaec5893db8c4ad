package cli

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/scale"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// suggest returns the candidate closest to input, or "" when nothing
// matches. Candidates are compared case-insensitively.
func suggest(input string, candidates []string) string {
	pattern := strings.ToLower(strings.TrimSpace(input))
	if pattern == "" {
		return ""
	}
	lower := make([]string, len(candidates))
	for i, c := range candidates {
		lower[i] = strings.ToLower(c)
	}
	matches := fuzzy.Find(pattern, lower)
	if len(matches) == 0 {
		return ""
	}
	return candidates[matches[0].Index]
}

// checkName parses input and, on failure, adds the closest candidate to
// the error message.
func checkName[T any](input string, parse func(string) (T, error), candidates []string) error {
	if _, err := parse(input); err != nil {
		if best := suggest(input, candidates); best != "" {
			return errors.New(errors.GetCode(err), "%s; did you mean %q?", errors.UserMessage(err), best)
		}
		return err
	}
	return nil
}

func tuningCandidates() []string {
	var out []string
	for _, t := range tuning.All() {
		out = append(out, t.Name.String())
		out = append(out, t.Aliases...)
	}
	return out
}

func scaleCandidates() []string {
	var out []string
	for _, t := range scale.Types() {
		out = append(out, t.String())
		out = append(out, t.Aliases()...)
	}
	return out
}

func qualityCandidates() []string {
	var out []string
	for _, q := range chord.Qualities() {
		out = append(out, q.String())
	}
	return out
}

func checkTuning(name string) error {
	return checkName(name, tuning.Parse, tuningCandidates())
}

func checkScale(name string) error {
	return checkName(name, scale.ParseType, scaleCandidates())
}

func checkQuality(name string) error {
	return checkName(name, chord.ParseQuality, qualityCandidates())
}
