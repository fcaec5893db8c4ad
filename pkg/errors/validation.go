package errors

import (
	"strings"
	"unicode"
)

// DefaultMaxFret is the highest fret a range may reach unless the caller
// configures a different maximum.
const DefaultMaxFret = 24

// maxNameLength bounds user-supplied musical names (notes, scales, tunings).
const maxNameLength = 64

// ValidateChroma checks that pos is a pitch class in 0-11.
func ValidateChroma(pos int) error {
	if pos < 0 || pos > 11 {
		return New(ErrCodeInvalidPitch, "chromatic position %d outside 0-11", pos)
	}
	return nil
}

// ValidateOctave checks that octave lies in the supported 0-10 range.
func ValidateOctave(octave int) error {
	if octave < 0 || octave > 10 {
		return New(ErrCodeInvalidPitch, "octave %d outside 0-10", octave)
	}
	return nil
}

// ValidateFretRange validates a display range against maxFret.
//
// Validation rules:
//   - Neither bound may be negative
//   - startFret must not exceed endFret
//   - endFret must not exceed maxFret (DefaultMaxFret when maxFret <= 0)
func ValidateFretRange(startFret, endFret, maxFret int) error {
	if maxFret <= 0 {
		maxFret = DefaultMaxFret
	}
	switch {
	case startFret < 0 || endFret < 0:
		return New(ErrCodeOutOfRange, "fret range [%d,%d] has a negative bound", startFret, endFret)
	case startFret > endFret:
		return New(ErrCodeOutOfRange, "start fret %d is after end fret %d", startFret, endFret)
	case endFret > maxFret:
		return New(ErrCodeOutOfRange, "end fret %d exceeds maximum %d", endFret, maxFret)
	}
	return nil
}

// ValidateName validates a user-supplied name before it is matched against
// one of the closed enumerations (note names, scale types, tunings).
// It rejects empty, oversized and control-character input.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}
	return nil
}
