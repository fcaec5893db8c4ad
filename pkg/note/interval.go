package note

var intervalNames = [12]string{
	"root",
	"minor second",
	"major second",
	"minor third",
	"major third",
	"perfect fourth",
	"tritone",
	"perfect fifth",
	"minor sixth",
	"major sixth",
	"minor seventh",
	"major seventh",
}

var intervalAbbrevs = [12]string{"R", "b2", "2", "b3", "3", "4", "b5", "5", "b6", "6", "b7", "7"}

// IntervalName returns the conventional name of a simple interval, e.g.
// "minor third" for 3. semitones is reduced modulo 12.
func IntervalName(semitones int) string {
	return intervalNames[mod12(semitones)]
}

// IntervalAbbrev returns the degree-style abbreviation of a simple interval,
// e.g. "b3" for 3 and "R" for 0.
func IntervalAbbrev(semitones int) string {
	return intervalAbbrevs[mod12(semitones)]
}
