// Package render turns a computed [fretboard.Fretboard] into output
// formats.
//
// # Formats
//
//   - [RenderText]: a terminal diagram styled with lipgloss. Highlight
//     categories are colored from the board's color scheme; without a
//     color-capable terminal the labels alone carry the information.
//   - [RenderSVG]: a standalone SVG diagram with fret markers, highlighted
//     notes and optional hover interaction.
//   - [RenderJSON]: the board's JSON document.
//
// All renderers take functional options and never mutate the board. The
// display toggles carried by the board (note names, intervals, finger
// numbers, fret and string numbers) decide what each cell shows:
//
//	fb, _ := fretboard.Compute(cfg)
//	out := render.RenderText(fb)
//	svg := render.RenderSVG(fb, render.WithFretWidth(48))
//
// [Render] dispatches on a [Format] name, which is how the pipeline and
// the CLI pick outputs.
package render
