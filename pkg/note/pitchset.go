package note

import (
	"encoding/json"
	"strings"
)

// PitchSet is a set of pitch classes, one bit per chromatic position.
// The zero value is the empty set.
type PitchSet uint16

// SetOf returns the set of pitch classes of notes.
func SetOf(notes ...Note) PitchSet {
	var s PitchSet
	for _, n := range notes {
		s = s.Add(n.Chroma())
	}
	return s
}

// Add returns s with chroma (reduced modulo 12) included.
func (s PitchSet) Add(chroma int) PitchSet {
	return s | 1<<mod12(chroma)
}

// Remove returns s without chroma.
func (s PitchSet) Remove(chroma int) PitchSet {
	return s &^ (1 << mod12(chroma))
}

// Toggle flips membership of chroma.
func (s PitchSet) Toggle(chroma int) PitchSet {
	return s ^ 1<<mod12(chroma)
}

// Has reports whether chroma is in the set.
func (s PitchSet) Has(chroma int) bool {
	return s&(1<<mod12(chroma)) != 0
}

// Contains reports whether n's pitch class is in the set.
func (s PitchSet) Contains(n Note) bool { return s.Has(n.Chroma()) }

// Len returns the number of pitch classes in the set.
func (s PitchSet) Len() int {
	count := 0
	for c := 0; c < 12; c++ {
		if s.Has(c) {
			count++
		}
	}
	return count
}

// Chromas returns the members in ascending order.
func (s PitchSet) Chromas() []int {
	out := make([]int, 0, 12)
	for c := 0; c < 12; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s PitchSet) String() string {
	parts := make([]string, 0, 12)
	for _, c := range s.Chromas() {
		parts = append(parts, NameFor(c, PreferSharp).String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON encodes the set as a sorted list of chromatic positions.
func (s PitchSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Chromas())
}

// UnmarshalJSON decodes a list of chromatic positions.
func (s *PitchSet) UnmarshalJSON(data []byte) error {
	var chromas []int
	if err := json.Unmarshal(data, &chromas); err != nil {
		return err
	}
	var out PitchSet
	for _, c := range chromas {
		out = out.Add(c)
	}
	*s = out
	return nil
}
