package note_test

import (
	"fmt"

	"github.com/matzehuels/fretboard/pkg/note"
)

func ExampleAddInterval() {
	e2 := note.New(note.E, 2)
	fmt.Println(note.AddInterval(e2, 8))
	fmt.Println(note.AddInterval(e2, -5))
	fmt.Println(note.AddInterval(note.New(note.BFlat, 3), 2))
	// Output:
	// C3
	// B1
	// C4
}

func ExampleEnharmonics() {
	fmt.Println(note.Enharmonics(note.New(note.GFlat, 3)))
	// Output:
	// [F# Gb]
}
