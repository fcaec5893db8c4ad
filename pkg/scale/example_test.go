package scale_test

import (
	"fmt"

	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/scale"
)

func ExampleGenerate() {
	notes, _ := scale.Generate(note.New(note.C, 4), []int{2, 2, 1, 2, 2, 2, 1})
	fmt.Println(notes)
	// Output:
	// [C4 D4 E4 F4 G4 A4 B4]
}

func ExampleNew() {
	s, _ := scale.New(note.New(note.A, 2), scale.PentatonicMinor)
	for _, d := range s.Degrees {
		fmt.Printf("%d:%s:%s ", d.Number, d.Abbreviation, d.Note.Name)
	}
	fmt.Println()
	// Output:
	// 1:R:A 2:b3:C 3:4:D 4:5:E 5:b7:G
}
