package render

import "github.com/matzehuels/fretboard/pkg/fretboard"

// Palette holds the colors of one scheme as hex strings.
type Palette struct {
	Background string
	Foreground string
	Muted      string
	Fret       string
	Nut        string
	String     string
	Inlay      string
	Label      string

	Root      string
	ChordTone string
	ScaleNote string
	Interval  string
	Selected  string
	Hovered   string
}

// Fill returns the fill color for a highlight category, or "" for none.
func (p Palette) Fill(h fretboard.HighlightType) string {
	switch h {
	case fretboard.HighlightRoot:
		return p.Root
	case fretboard.HighlightChordTone:
		return p.ChordTone
	case fretboard.HighlightScaleNote:
		return p.ScaleNote
	case fretboard.HighlightInterval:
		return p.Interval
	}
	return ""
}

var palettes = map[fretboard.ColorScheme]Palette{
	fretboard.SchemeDefault: {
		Background: "#FFFFFF", Foreground: "#1C2024", Muted: "#8B8D98",
		Fret: "#B9BBC6", Nut: "#1C2024", String: "#60646C", Inlay: "#E0E1E6", Label: "#FFFFFF",
		Root: "#E5484D", ChordTone: "#3E63DD", ScaleNote: "#30A46C", Interval: "#F76B15",
		Selected: "#8E4EC6", Hovered: "#FFC53D",
	},
	// Okabe-Ito
	fretboard.SchemeColorBlind: {
		Background: "#FFFFFF", Foreground: "#000000", Muted: "#7F7F7F",
		Fret: "#B0B0B0", Nut: "#000000", String: "#555555", Inlay: "#E6E6E6", Label: "#FFFFFF",
		Root: "#D55E00", ChordTone: "#0072B2", ScaleNote: "#009E73", Interval: "#E69F00",
		Selected: "#CC79A7", Hovered: "#F0E442",
	},
	fretboard.SchemeDark: {
		Background: "#111113", Foreground: "#EDEEF0", Muted: "#6F6D78",
		Fret: "#43484E", Nut: "#EDEEF0", String: "#8B8D98", Inlay: "#272A2D", Label: "#111113",
		Root: "#FF6369", ChordTone: "#849DFF", ScaleNote: "#3DD68C", Interval: "#FF977D",
		Selected: "#BF7AF0", Hovered: "#FFE629",
	},
	fretboard.SchemeLight: {
		Background: "#FCFCFD", Foreground: "#1C2024", Muted: "#80838D",
		Fret: "#CDCED6", Nut: "#1C2024", String: "#80838D", Inlay: "#F0F0F3", Label: "#FFFFFF",
		Root: "#CE2C31", ChordTone: "#3A5BC7", ScaleNote: "#218358", Interval: "#CC4E00",
		Selected: "#8145B5", Hovered: "#AB6400",
	},
}

// PaletteFor returns the palette of scheme, falling back to the default.
func PaletteFor(scheme fretboard.ColorScheme) Palette {
	if p, ok := palettes[scheme]; ok {
		return p
	}
	return palettes[fretboard.SchemeDefault]
}

// Inlays are the fret positions that carry a position marker; 12 and 24
// carry two.
var Inlays = []int{3, 5, 7, 9, 12, 15, 17, 19, 21, 24}

func doubleInlay(fret int) bool { return fret == 12 || fret == 24 }
