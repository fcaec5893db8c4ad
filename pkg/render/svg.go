package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/fretboard/pkg/fretboard"
)

const (
	defaultFretWidth = 56.0
	defaultStringGap = 28.0
	svgMargin        = 32.0
	svgOpenWidth     = 36.0
	svgTitleHeight   = 28.0
	svgNumberHeight  = 22.0
	svgNoteRadius    = 11.0
	svgInlayRadius   = 5.0
)

const noteInteractionCSS = `
    .note { transition: transform 0.15s ease; transform-origin: center; transform-box: fill-box; }
    .note.related { transform: scale(1.2); }
    .note.related circle { stroke-width: 3; }`

const noteInteractionJS = `
    function relate(chroma) {
      document.querySelectorAll('.note').forEach(n => n.classList.toggle('related', n.dataset.chroma === chroma));
    }
    function clearRelated() {
      document.querySelectorAll('.note').forEach(n => n.classList.remove('related'));
    }
    document.querySelectorAll('.note').forEach(el => {
      el.addEventListener('mouseenter', () => relate(el.dataset.chroma));
      el.addEventListener('mouseleave', clearRelated);
    });`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	fretWidth   float64
	stringGap   float64
	interaction bool
	title       bool
}

func WithFretWidth(w float64) SVGOption { return func(r *svgRenderer) { r.fretWidth = w } }
func WithStringGap(g float64) SVGOption { return func(r *svgRenderer) { r.stringGap = g } }
func WithInteraction() SVGOption        { return func(r *svgRenderer) { r.interaction = true } }
func WithSVGTitle(on bool) SVGOption    { return func(r *svgRenderer) { r.title = on } }

func newSVGRenderer(opts ...SVGOption) *svgRenderer {
	r := &svgRenderer{fretWidth: defaultFretWidth, stringGap: defaultStringGap, title: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.fretWidth <= 0 {
		r.fretWidth = defaultFretWidth
	}
	if r.stringGap <= 0 {
		r.stringGap = defaultStringGap
	}
	return r
}

// svgGeometry maps board coordinates to pixels.
type svgGeometry struct {
	r         *svgRenderer
	first     int // first fret drawn as a cell; 0 is drawn left of the nut
	frets     int
	strings   int
	left, top float64
}

func (g svgGeometry) boardWidth() float64  { return float64(g.frets) * g.r.fretWidth }
func (g svgGeometry) boardHeight() float64 { return float64(max(g.strings-1, 0)) * g.r.stringGap }

func (g svgGeometry) wireX(i int) float64 { return g.left + float64(i)*g.r.fretWidth }

func (g svgGeometry) fretX(fret int) float64 {
	if fret == 0 {
		return g.left - svgOpenWidth/2
	}
	return g.wireX(fret-g.first) + g.r.fretWidth/2
}

// stringY places string 1 (the highest) at the top.
func (g svgGeometry) stringY(number int) float64 {
	return g.top + float64(number-1)*g.r.stringGap
}

// RenderSVG draws fb as a standalone SVG document.
func RenderSVG(fb fretboard.Fretboard, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	pal := PaletteFor(fb.Display.ColorScheme)

	g := svgGeometry{r: r, first: max(fb.StartFret, 1), strings: len(fb.Strings)}
	g.frets = max(fb.EndFret-g.first+1, 0)
	g.left = svgMargin + svgOpenWidth
	g.top = svgMargin
	if r.title {
		g.top += svgTitleHeight
	}
	width := g.left + g.boardWidth() + svgMargin
	height := g.top + g.boardHeight() + svgMargin
	if fb.Display.ShowFretNumbers {
		height += svgNumberHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.1f" height="%.1f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", pal.Background)
	if r.title {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" font-family="sans-serif" font-size="16" font-weight="bold" fill="%s">%s</text>`+"\n",
			svgMargin, svgMargin+svgTitleHeight/2, pal.Foreground, escapeXML(Title(fb)))
	}

	renderInlays(&buf, g, fb, pal)
	renderFrets(&buf, g, fb, pal)
	renderStrings(&buf, g, fb, pal)
	renderNotes(&buf, g, fb, pal)

	if r.interaction {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", noteInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", noteInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderInlays(buf *bytes.Buffer, g svgGeometry, fb fretboard.Fretboard, pal Palette) {
	mid := g.top + g.boardHeight()/2
	for _, f := range Inlays {
		if f < g.first || f > fb.EndFret {
			continue
		}
		x := g.fretX(f)
		if doubleInlay(f) {
			q := g.boardHeight() / 4
			fmt.Fprintf(buf, `  <circle class="inlay" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, mid-q, svgInlayRadius, pal.Inlay)
			fmt.Fprintf(buf, `  <circle class="inlay" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, mid+q, svgInlayRadius, pal.Inlay)
			continue
		}
		fmt.Fprintf(buf, `  <circle class="inlay" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, mid, svgInlayRadius, pal.Inlay)
	}
}

func renderFrets(buf *bytes.Buffer, g svgGeometry, fb fretboard.Fretboard, pal Palette) {
	y1, y2 := g.top, g.top+g.boardHeight()
	for i := 0; i <= g.frets; i++ {
		x := g.wireX(i)
		color, width := pal.Fret, 2.0
		if i == 0 && g.first == 1 {
			color, width = pal.Nut, 6.0
		}
		fmt.Fprintf(buf, `  <line class="fret" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
			x, y1, x, y2, color, width)
	}
	if !fb.Display.ShowFretNumbers {
		return
	}
	y := y2 + svgNumberHeight
	for f := fb.StartFret; f <= fb.EndFret; f++ {
		fmt.Fprintf(buf, `  <text class="fret-number" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="11" fill="%s">%d</text>`+"\n",
			g.fretX(f), y, pal.Muted, f)
	}
}

func renderStrings(buf *bytes.Buffer, g svgGeometry, fb fretboard.Fretboard, pal Palette) {
	x1, x2 := g.wireX(0), g.wireX(g.frets)
	for _, gs := range fb.Strings {
		y := g.stringY(gs.Number)
		// Lower strings are drawn heavier.
		width := 1.0 + float64(len(fb.Strings)-gs.Number)*0.3
		fmt.Fprintf(buf, `  <line class="string" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`+"\n",
			x1, y, x2, y, pal.String, width)

		label := gs.OpenNote.Name.String()
		if fb.Display.ShowStringNumbers {
			label = fmt.Sprintf("%d %s", gs.Number, label)
		}
		fmt.Fprintf(buf, `  <text class="string-label" x="%.1f" y="%.1f" text-anchor="end" dominant-baseline="central" font-family="sans-serif" font-size="12" fill="%s">%s</text>`+"\n",
			svgMargin-4, y, pal.Foreground, escapeXML(label))
		if gs.Muted {
			fmt.Fprintf(buf, `  <text class="muted" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="14" fill="%s">×</text>`+"\n",
				g.fretX(0), y, pal.Muted)
		}
	}
}

func renderNotes(buf *bytes.Buffer, g svgGeometry, fb fretboard.Fretboard, pal Palette) {
	for _, gs := range fb.Strings {
		if gs.Muted {
			continue
		}
		y := g.stringY(gs.Number)
		for _, f := range gs.Frets {
			marked := f.IsSelected || f.IsPressed || f.IsHovered
			if f.Highlight == fretboard.HighlightNone && !marked {
				continue
			}
			renderNote(buf, g.fretX(f.Position), y, gs.Number, f, fb.Display, pal)
		}
	}
}

func renderNote(buf *bytes.Buffer, x, y float64, str int, f fretboard.Fret, d fretboard.Display, pal Palette) {
	fill := pal.Fill(f.Highlight)
	textFill := pal.Label
	if fill == "" {
		fill, textFill = pal.Background, pal.Foreground
	}
	stroke, strokeWidth := fill, 1.0
	switch {
	case f.IsHovered:
		stroke, strokeWidth = pal.Hovered, 3.0
	case f.IsSelected:
		stroke, strokeWidth = pal.Selected, 3.0
	case f.IsPressed:
		stroke, strokeWidth = pal.Foreground, 2.0
	}
	classes := []string{"note", "hl-" + f.Highlight.String()}
	if f.IsSelected {
		classes = append(classes, "selected")
	}
	if f.IsPressed {
		classes = append(classes, "pressed")
	}
	if f.IsHovered {
		classes = append(classes, "hovered")
	}

	fmt.Fprintf(buf, `  <g id="s%df%d" class="%s" data-chroma="%d">`+"\n", str, f.Position, strings.Join(classes, " "), f.Note.Chroma())
	fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		x, y, svgNoteRadius, fill, stroke, strokeWidth)
	label := CellLabel(f, d)
	if label == "" && fill == pal.Background {
		label = f.Note.Name.String()
	}
	if label != "" {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="10" font-weight="bold" fill="%s">%s</text>`+"\n",
			x, y, textFill, escapeXML(label))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
