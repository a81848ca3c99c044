package export

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/ajstarks/svgo"
	"github.com/desertthunder/deck/internal/models"
)

var (
	colorBackdrop = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorCard     = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorAccent   = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
	colorTitle    = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorText     = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	colorSubtle   = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
)

const (
	pagePadding = 64
	pageGap     = 24
	lineHeight  = 28
)

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderSVG stacks every slide of d vertically, one page each, separated by a gap.
func RenderSVG(d *models.Deck, page Page) ([]byte, error) {
	if page.Width <= 0 || page.Height <= 0 {
		page = DefaultPage
	}

	var buf bytes.Buffer
	height := d.Len()*page.Height + (d.Len()-1)*pageGap

	canvas := svg.New(&buf)
	canvas.Start(page.Width, height)
	canvas.Title(d.Title)

	cols := (page.Width - 2*pagePadding) / 10
	for i, s := range d.Slides {
		lines, err := slideLines(s, d.Len(), cols)
		if err != nil {
			return nil, err
		}
		top := i * (page.Height + pageGap)
		canvas.Gid(fmt.Sprintf("slide-%d", s.Ordinal))
		canvas.Rect(0, top, page.Width, page.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
		drawLinesSVG(canvas, lines, top, page)
		canvas.Text(page.Width-32, top+page.Height-24, fmt.Sprintf("%d / %d", s.Ordinal, d.Len()),
			fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;text-anchor:end", css(colorSubtle)))
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes(), nil
}

func drawLinesSVG(canvas *svg.SVG, lines []textLine, top int, page Page) {
	y := top + pagePadding
	bottom := top + page.Height - pagePadding
	for _, l := range lines {
		if y > bottom {
			return
		}
		switch l.Kind {
		case lineTitle:
			canvas.Text(pagePadding, y, l.Text, fmt.Sprintf("fill:%s;font-size:28px;font-family:monospace;font-weight:bold", css(colorTitle)))
			y += lineHeight * 2
		case lineGroup:
			canvas.Text(pagePadding, y, l.Text, fmt.Sprintf("fill:%s;font-size:18px;font-family:monospace;font-weight:bold", css(colorAccent)))
			y += lineHeight
		case lineItem:
			canvas.Roundrect(pagePadding, y-20, page.Width-2*pagePadding, lineHeight, 6, 6, fmt.Sprintf("fill:%s", css(colorCard)))
			canvas.Text(pagePadding+12, y, l.Text, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace", css(colorText)))
			y += lineHeight + 6
		default:
			canvas.Text(pagePadding, y, l.Text, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;white-space:pre", css(colorText)))
			y += lineHeight
		}
	}
}
