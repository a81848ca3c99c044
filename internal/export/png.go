package export

import (
	"bytes"
	"fmt"

	"git.sr.ht/~sbinet/gg"
	"github.com/desertthunder/deck/internal/models"
	"golang.org/x/image/font/basicfont"
)

// pngPath names the image for slide n, e.g. "presentation-03.png".
func pngPath(base string, n int) string {
	return fmt.Sprintf("%s-%02d%s", base, n, FormatPNG.Ext())
}

// RenderPNG draws slide s of a deck with total slides.
func RenderPNG(s models.Slide, total int, page Page) ([]byte, error) {
	if page.Width <= 0 || page.Height <= 0 {
		page = DefaultPage
	}

	dc := gg.NewContext(page.Width, page.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	cols := (page.Width - 2*pagePadding) / 7
	lines, err := slideLines(s, total, cols)
	if err != nil {
		return nil, err
	}

	w := float64(page.Width)
	y := float64(pagePadding)
	bottom := float64(page.Height - pagePadding)
	for _, l := range lines {
		if y > bottom {
			break
		}
		switch l.Kind {
		case lineTitle:
			dc.SetColor(colorTitle)
			dc.DrawStringAnchored(l.Text, pagePadding, y, 0, 0.5)
			y += lineHeight * 2
		case lineGroup:
			dc.SetColor(colorAccent)
			dc.DrawStringAnchored(l.Text, pagePadding, y, 0, 0.5)
			y += lineHeight
		case lineItem:
			dc.SetColor(colorCard)
			dc.DrawRoundedRectangle(pagePadding, y-lineHeight/2, w-2*pagePadding, lineHeight, 6)
			dc.Fill()
			dc.SetColor(colorText)
			dc.DrawStringAnchored(l.Text, pagePadding+12, y, 0, 0.5)
			y += lineHeight + 6
		default:
			dc.SetColor(colorText)
			dc.DrawStringAnchored(l.Text, pagePadding, y, 0, 0.5)
			y += lineHeight
		}
	}

	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("%d / %d", s.Ordinal, total), w-32, float64(page.Height-24), 1, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode slide %d: %w", s.Ordinal, err)
	}
	return buf.Bytes(), nil
}

func renderPNGFiles(d *models.Deck, page Page, base string) (map[string][]byte, []string, error) {
	files := make(map[string][]byte, d.Len())
	order := make([]string, 0, d.Len())
	for _, s := range d.Slides {
		data, err := RenderPNG(s, d.Len(), page)
		if err != nil {
			return nil, nil, err
		}
		path := pngPath(base, s.Ordinal)
		files[path] = data
		order = append(order, path)
	}
	return files, order, nil
}
