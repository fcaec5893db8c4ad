// Package note implements pitch arithmetic and enharmonic spelling.
//
// A [Note] is a spelled pitch: one of the 17 canonical [Name] values plus an
// octave. Its chromatic position (pitch class, C=0 through B=11) is derived
// from the name, so two spellings of the same pitch class (C# and Db) are
// different names but pitch-equal notes.
//
// # Arithmetic
//
// [AddInterval] moves a note by any integer number of semitones. The result
// wraps modulo 12 and carries whole octaves, so transposing down works the
// same way as transposing up:
//
//	e2 := note.New(note.E, 2)
//	note.AddInterval(e2, 8)   // C3
//	note.AddInterval(e2, -5)  // B1
//
// The result is spelled with the source note's preference: flat-spelled
// notes stay flat, every other note is spelled with sharps. Use [Transpose]
// or [Note.Respell] to choose explicitly.
//
// # Sets
//
// [PitchSet] is an octave-independent set of pitch classes. Scale and chord
// membership, and the caller's note selection, are all expressed as pitch
// sets.
//
// All functions are pure and safe for concurrent use.
package note
