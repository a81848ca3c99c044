package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/desertthunder/deck/internal/export"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const defaultWidth = 80

// Print renders every slide as styled markdown, the terminal counterpart of the print-ready HTML.
func (r *Runner) Print(ctx context.Context, cmd *cli.Command) error {
	d, _, err := r.loadDeck(cmd)
	if err != nil {
		return err
	}

	md, err := export.ExportToMarkdown(d)
	if err != nil {
		return fmt.Errorf("failed to render deck: %w", err)
	}

	width := cmd.Int("width")
	if width <= 0 {
		width = r.terminalWidth()
	}

	style := cmd.String("style")
	if style == "" {
		style = r.config.Deck.Style
	}
	if !r.isTerminal() {
		style = "notty"
	}

	renderer, err := glamour.NewTermRenderer(styleOption(style), glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(string(md))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	return r.writePlain("%s", out)
}

func styleOption(style string) glamour.TermRendererOption {
	if style == "" || style == "auto" {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle(style)
}

func (r *Runner) terminalWidth() int {
	if !r.isTerminal() {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
