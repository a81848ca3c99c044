package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/desertthunder/deck/internal/anim"
	"github.com/desertthunder/deck/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: {{.Page.Width}}px {{.Page.Height}}px landscape; margin: 0; }
* { animation: none !important; transition: none !important; }
html, body { margin: 0; padding: 0; background: #0f172a; }
body { font-family: system-ui, sans-serif; color: #e2e8f0; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
.slide { box-sizing: border-box; width: {{.Page.Width}}px; height: {{.Page.Height}}px; padding: 48px 64px; overflow: hidden; position: relative; background: linear-gradient(135deg, #0f172a, #1e3a8a); }
.slide h1, .slide h2 { color: #f8fafc; margin-top: 0; }
.slide .counter { position: absolute; right: 32px; bottom: 24px; font-size: 14px; color: #94a3b8; }
.group { display: flex; flex-wrap: wrap; gap: 16px; margin-top: 24px; }
.group.timeline, .group.component { flex-direction: column; }
.item { opacity: 1; transform: none; background: rgba(255, 255, 255, 0.08); border-radius: 8px; padding: 12px 16px; }
.group.scale .item { flex: 1 1 40%; }
.group.timeline .item { border-left: 4px solid #38bdf8; }
</style>
</head>
<body>
{{range .Slides}}<section class="slide" id="slide-{{.Ordinal}}" style="page-break-after: {{if .Last}}auto{{else}}always{{end}};">
<h2>{{.Title}}</h2>
{{.Body}}
{{range .Groups}}<div class="group {{.Kind}}">{{if .Title}}<h3>{{.Title}}</h3>{{end}}
{{range .Elements}}<div class="item">{{.Text}}</div>
{{end}}</div>
{{end}}<div class="counter">{{.Ordinal}} / {{.Total}}</div>
</section>
{{end}}</body>
</html>
`))

type documentView struct {
	Title  string
	Page   Page
	Slides []slideView
}

type slideView struct {
	Ordinal int
	Total   int
	Title   string
	Body    template.HTML
	Groups  []anim.GroupState
	Last    bool
}

// RenderHTML returns the print-ready document for every slide of d.
func RenderHTML(d *models.Deck, page Page) ([]byte, error) {
	return renderDocument(d, page, d.Slides)
}

// RenderSlideHTML returns a one-page document for slide n.
func RenderSlideHTML(d *models.Deck, n int, page Page) ([]byte, error) {
	s, ok := d.Slide(n)
	if !ok {
		return nil, fmt.Errorf("slide %d out of range [1, %d]", n, d.Len())
	}
	return renderDocument(d, page, []models.Slide{s})
}

func renderDocument(d *models.Deck, page Page, slides []models.Slide) ([]byte, error) {
	if page.Width <= 0 || page.Height <= 0 {
		page = DefaultPage
	}

	view := documentView{Title: d.Title, Page: page, Slides: make([]slideView, len(slides))}
	for i, s := range slides {
		body, err := markdownHTML(s.Body)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.Ordinal, err)
		}
		view.Slides[i] = slideView{
			Ordinal: s.Ordinal,
			Total:   d.Len(),
			Title:   s.Title,
			Body:    body,
			Groups:  anim.Settled(s),
			Last:    i == len(slides)-1,
		}
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return buf.Bytes(), nil
}

// markdownHTML converts a slide body. Raw HTML in the source is escaped by goldmark's default renderer.
func markdownHTML(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
