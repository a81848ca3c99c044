// Package export renders a deck for printing and sharing.
//
// Every format shows each slide fully revealed, with animations disabled, one slide per page:
//
//   - [FormatPDF] : print-ready HTML rendered to PDF by headless Chrome (go-rod)
//   - [FormatHTML] : the print-ready document itself, landscape pages with a break after every slide but the last
//   - [FormatSVG] : all pages stacked in one SVG image
//   - [FormatPNG] : one image per slide
//   - [FormatMarkdown] and [FormatText] : plain renderings for notes and diffs
//
// [Exporter.Export] reports progress through a non-blocking channel of [ProgressUpdate] values.
package export
