package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/desertthunder/deck/internal/anim"
	"github.com/desertthunder/deck/internal/models"
)

// ExportToMarkdown converts a deck to a single Markdown document with one section per slide
func ExportToMarkdown(d *models.Deck) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", d.Title))
	if d.Subtitle != "" {
		buf.WriteString(fmt.Sprintf("_%s_\n\n", d.Subtitle))
	}
	if d.Author != "" {
		buf.WriteString(fmt.Sprintf("**Author**: %s\n", d.Author))
	}
	buf.WriteString(fmt.Sprintf("**Slides**: %d\n", d.Len()))

	for _, s := range d.Slides {
		buf.WriteString("\n---\n\n")
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", s.Ordinal, s.Title))
		if body := strings.TrimSpace(s.Body); body != "" {
			buf.WriteString(demoteHeadings(body))
			buf.WriteString("\n\n")
		}
		for _, g := range anim.Settled(s) {
			if g.Title != "" {
				buf.WriteString(fmt.Sprintf("### %s\n\n", g.Title))
			}
			for i, e := range g.Elements {
				if g.Kind == models.GroupTimeline {
					buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, e.Text))
				} else {
					buf.WriteString(fmt.Sprintf("- %s\n", e.Text))
				}
			}
			buf.WriteString("\n")
		}
		if s.Notes != "" {
			buf.WriteString(fmt.Sprintf("> %s\n\n", strings.ReplaceAll(strings.TrimSpace(s.Notes), "\n", "\n> ")))
		}
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExportToText converts a deck to plain text, rendering slide bodies without markup
func ExportToText(d *models.Deck) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Deck: %s\n", d.Title))
	if d.Subtitle != "" {
		buf.WriteString(fmt.Sprintf("Subtitle: %s\n", d.Subtitle))
	}
	buf.WriteString(fmt.Sprintf("Slides: %d\n", d.Len()))

	for _, s := range d.Slides {
		lines, err := slideLines(s, d.Len(), 78)
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n")
		for _, l := range lines {
			buf.WriteString(l.Text)
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

type lineKind int

const (
	lineTitle lineKind = iota
	lineBody
	lineGroup
	lineItem
)

type textLine struct {
	Kind lineKind
	Text string
}

// slideLines lays out s as plain text no wider than cols.
func slideLines(s models.Slide, total, cols int) ([]textLine, error) {
	lines := []textLine{{Kind: lineTitle, Text: fmt.Sprintf("[%d/%d] %s", s.Ordinal, total, s.Title)}}

	body, err := plainBody(s.Body, cols)
	if err != nil {
		return nil, fmt.Errorf("slide %d: %w", s.Ordinal, err)
	}
	for _, b := range body {
		lines = append(lines, textLine{Kind: lineBody, Text: b})
	}

	for _, g := range anim.Settled(s) {
		if g.Title != "" {
			lines = append(lines, textLine{Kind: lineGroup, Text: g.Title})
		}
		for i, e := range g.Elements {
			bullet := "  - "
			if g.Kind == models.GroupTimeline {
				bullet = fmt.Sprintf("  %d. ", i+1)
			}
			lines = append(lines, textLine{Kind: lineItem, Text: bullet + e.Text})
		}
	}
	return lines, nil
}

// plainBody renders markdown with glamour's unstyled theme and drops blank edges.
func plainBody(src string, cols int) ([]string, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(styles.NoTTYStyle), glamour.WithWordWrap(cols))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(src)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var lines []string
	for _, l := range strings.Split(out, "\n") {
		lines = append(lines, strings.TrimRight(l, " "))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// demoteHeadings pushes body headings below the slide's own "##" heading.
func demoteHeadings(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "#") {
			lines[i] = "##" + l
		}
	}
	return strings.Join(lines, "\n")
}
