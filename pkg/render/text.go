package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fretboard/pkg/fretboard"
)

const (
	textCellWidth = 5
	textOpenWidth = 3
	textLine      = "─"
	textNut       = "‖"
	textFret      = "│"
	textDot       = "●"
)

// TextOption configures text rendering via [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	renderer *lipgloss.Renderer
	allNotes bool
	legend   bool
	title    bool
}

// WithRenderer sets the lipgloss renderer. Tests pass one with an ASCII
// color profile to get plain output.
func WithRenderer(r *lipgloss.Renderer) TextOption { return func(t *textRenderer) { t.renderer = r } }

// WithAllNotes labels every fret, dimming the ones without a highlight.
func WithAllNotes() TextOption { return func(t *textRenderer) { t.allNotes = true } }

// WithLegend toggles the highlight legend below the board.
func WithLegend(on bool) TextOption { return func(t *textRenderer) { t.legend = on } }

// WithTitle toggles the title line above the board.
func WithTitle(on bool) TextOption { return func(t *textRenderer) { t.title = on } }

func newTextRenderer(opts ...TextOption) *textRenderer {
	t := &textRenderer{legend: true, title: true}
	for _, opt := range opts {
		opt(t)
	}
	if t.renderer == nil {
		t.renderer = lipgloss.NewRenderer(os.Stdout)
	}
	return t
}

// RenderText draws fb as a terminal diagram, highest string on top.
func RenderText(fb fretboard.Fretboard, opts ...TextOption) []byte {
	t := newTextRenderer(opts...)
	pal := PaletteFor(fb.Display.ColorScheme)
	d := fb.Display

	prefixes := make([]string, len(fb.Strings))
	width := 0
	for i, gs := range fb.Strings {
		p := gs.OpenNote.Name.String()
		if d.ShowStringNumbers {
			p = strconv.Itoa(gs.Number) + " " + p
		}
		prefixes[i] = p
		width = max(width, lipgloss.Width(p))
	}

	var b strings.Builder
	if t.title {
		b.WriteString(t.renderer.NewStyle().Bold(true).Render(Title(fb)))
		b.WriteString("\n")
	}
	if d.ShowFretNumbers {
		b.WriteString(strings.Repeat(" ", width+2))
		if fb.StartFret > 0 {
			b.WriteString(" ")
		}
		for f := fb.StartFret; f <= fb.EndFret; f++ {
			b.WriteString(center(strconv.Itoa(f), cellWidth(f), " "))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	faint := t.renderer.NewStyle().Foreground(lipgloss.Color(pal.Muted)).Faint(true)
	for i := len(fb.Strings) - 1; i >= 0; i-- {
		gs := fb.Strings[i]
		fmt.Fprintf(&b, "%-*s ", width, prefixes[i])
		if gs.Muted {
			b.WriteString(faint.Render("x"))
		} else {
			b.WriteString(" ")
		}
		if fb.StartFret > 0 {
			b.WriteString(textFret)
		}
		for _, f := range gs.Frets {
			b.WriteString(t.cell(f, d, pal))
			if f.Position == 0 {
				b.WriteString(textNut)
			} else {
				b.WriteString(textFret)
			}
		}
		b.WriteString("\n")
	}

	if t.legend {
		if l := t.legendLine(fb, pal); l != "" {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func cellWidth(fret int) int {
	if fret == 0 {
		return textOpenWidth
	}
	return textCellWidth
}

func (t *textRenderer) cell(f fretboard.Fret, d fretboard.Display, pal Palette) string {
	fill := textLine
	if f.Position == 0 {
		fill = " "
	}
	w := cellWidth(f.Position)
	label := CellLabel(f, d)
	lit := f.Highlight != fretboard.HighlightNone
	marked := f.IsSelected || f.IsPressed || f.IsHovered

	switch {
	case f.IsMuted:
		return strings.Repeat(fill, w)
	case label == "" && !lit && !marked && !t.allNotes:
		return strings.Repeat(fill, w)
	case label == "":
		label = f.Note.Name.String()
		if lit {
			label = textDot
		}
	}

	style := t.renderer.NewStyle()
	if c := pal.Fill(f.Highlight); c != "" {
		style = style.Bold(true).Foreground(lipgloss.Color(c))
	} else {
		style = style.Foreground(lipgloss.Color(pal.Muted))
	}
	if f.IsSelected {
		style = style.Underline(true)
	}
	if f.IsPressed {
		style = style.Italic(true)
	}
	if f.IsHovered {
		style = style.Reverse(true)
	}
	return centerStyled(label, w, fill, style)
}

// CellLabel is the text a renderer puts on a fret, following the board's
// display toggles. Finger numbers win over intervals, intervals over note
// names. Frets without a highlight get no label.
func CellLabel(f fretboard.Fret, d fretboard.Display) string {
	if f.IsMuted {
		return ""
	}
	switch {
	case d.ShowFingers && f.Finger > 0:
		return strconv.Itoa(f.Finger)
	case f.Highlight == fretboard.HighlightNone:
		return ""
	case d.ShowIntervals && f.Interval != "":
		return f.Interval
	case d.ShowNoteNames:
		return f.Note.Name.String()
	}
	return ""
}

func (t *textRenderer) legendLine(fb fretboard.Fretboard, pal Palette) string {
	present := map[fretboard.HighlightType]bool{}
	for _, gs := range fb.Strings {
		for _, f := range gs.Frets {
			present[f.Highlight] = true
		}
	}
	var parts []string
	for _, h := range []fretboard.HighlightType{
		fretboard.HighlightRoot, fretboard.HighlightChordTone,
		fretboard.HighlightScaleNote, fretboard.HighlightInterval,
	} {
		if !present[h] {
			continue
		}
		dot := t.renderer.NewStyle().Foreground(lipgloss.Color(pal.Fill(h))).Render(textDot)
		parts = append(parts, dot+" "+h.String())
	}
	return strings.Join(parts, "  ")
}

// Title describes the board's source and tuning, e.g.
// "C major (standard)" or "Cmaj7 x32010 (standard)".
func Title(fb fretboard.Fretboard) string {
	tun := fb.Tuning.String()
	switch src := fb.Source.(type) {
	case fretboard.ScaleSource:
		return fmt.Sprintf("%s (%s)", src.Scale.Name(), tun)
	case fretboard.ChordSource:
		if src.Position != nil {
			return fmt.Sprintf("%s %s (%s)", src.Chord.Symbol(), src.Position, tun)
		}
		return fmt.Sprintf("%s (%s)", src.Chord.Symbol(), tun)
	}
	if fb.Root != nil {
		return fmt.Sprintf("intervals from %s (%s)", fb.Root.Name, tun)
	}
	return tun
}

func center(s string, width int, fill string) string {
	left, right := padding(s, width)
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, right)
}

func centerStyled(s string, width int, fill string, style lipgloss.Style) string {
	left, right := padding(s, width)
	return strings.Repeat(fill, left) + style.Render(s) + strings.Repeat(fill, right)
}

func padding(s string, width int) (left, right int) {
	w := lipgloss.Width(s)
	if w >= width {
		return 0, 0
	}
	left = (width - w) / 2
	return left, width - w - left
}
