package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/shared"
)

// Format names an export target.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// Formats lists every supported format.
var Formats = []Format{FormatPDF, FormatHTML, FormatSVG, FormatPNG, FormatMarkdown, FormatText}

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch name {
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Page is the fixed landscape page size in CSS pixels.
type Page struct {
	Width  int
	Height int
}

// DefaultPage is 1280x720.
var DefaultPage = Page{Width: 1280, Height: 720}

// Options controls a single export.
type Options struct {
	Format  Format
	Output  string        // base path; the format extension is added when missing
	Page    Page          // defaults to [DefaultPage]
	Timeout time.Duration // applies to PDF printing only
}

// OptionsFromConfig builds [Options] from the [export] config section.
func OptionsFromConfig(c shared.ExportConfig) (Options, error) {
	f, err := ParseFormat(c.Format)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Format:  f,
		Output:  c.Output,
		Page:    Page{Width: c.PageWidth, Height: c.PageHeight},
		Timeout: 30 * time.Second,
	}, nil
}

// Result lists the files written by an export.
type Result struct {
	Format Format
	Files  []string
	Pages  int
}

// Printer turns a print-ready HTML document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, html []byte, page Page) ([]byte, error)
}

// Exporter writes decks to disk.
type Exporter struct {
	printer Printer
	logger  *log.Logger
}

// New creates an Exporter. A nil printer makes PDF exports fail with [shared.ErrServiceUnavailable].
func New(printer Printer, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{printer: printer, logger: logger}
}

// Export renders d in opts.Format and writes the result next to opts.Output.
func (e *Exporter) Export(ctx context.Context, d *models.Deck, opts Options, progress chan<- ProgressUpdate) (*Result, error) {
	if d == nil || d.Len() == 0 {
		return nil, fmt.Errorf("%w: nothing to export", shared.ErrInvalidDeck)
	}
	if opts.Format == "" {
		opts.Format = FormatPDF
	}
	if opts.Page.Width <= 0 || opts.Page.Height <= 0 {
		opts.Page = DefaultPage
	}
	if opts.Output == "" {
		opts.Output = "presentation"
	}

	base := strings.TrimSuffix(opts.Output, opts.Format.Ext())
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for i, s := range d.Slides {
		sendProgress(progress, renderPageUpdate(i+1, d.Len(), s.Title))
	}

	var (
		files map[string][]byte
		order []string
		err   error
	)

	switch opts.Format {
	case FormatPDF:
		files, order, err = e.pdf(ctx, d, opts, base, progress)
	case FormatHTML:
		files, order, err = single(base+opts.Format.Ext(), func() ([]byte, error) { return RenderHTML(d, opts.Page) })
	case FormatSVG:
		files, order, err = single(base+opts.Format.Ext(), func() ([]byte, error) { return RenderSVG(d, opts.Page) })
	case FormatPNG:
		files, order, err = renderPNGFiles(d, opts.Page, base)
	case FormatMarkdown:
		files, order, err = single(base+opts.Format.Ext(), func() ([]byte, error) { return ExportToMarkdown(d) })
	case FormatText:
		files, order, err = single(base+opts.Format.Ext(), func() ([]byte, error) { return ExportToText(d) })
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, opts.Format)
	}
	if err != nil {
		return nil, err
	}

	for i, path := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sendProgress(progress, writeFileUpdate(i+1, len(order), path))
		if err := os.WriteFile(path, files[path], 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	e.logger.Info("export complete", "format", opts.Format, "files", len(order), "pages", d.Len())
	sendProgress(progress, doneUpdate(len(order)))

	return &Result{Format: opts.Format, Files: order, Pages: d.Len()}, nil
}

func (e *Exporter) pdf(ctx context.Context, d *models.Deck, opts Options, base string, progress chan<- ProgressUpdate) (map[string][]byte, []string, error) {
	if e.printer == nil {
		return nil, nil, fmt.Errorf("%w: no PDF printer configured", shared.ErrServiceUnavailable)
	}

	doc, err := RenderHTML(d, opts.Page)
	if err != nil {
		return nil, nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	sendProgress(progress, printDocumentUpdate())
	data, err := e.printer.PrintPDF(ctx, doc, opts.Page)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to print PDF: %w", err)
	}

	path := base + FormatPDF.Ext()
	return map[string][]byte{path: data}, []string{path}, nil
}

func single(path string, render func() ([]byte, error)) (map[string][]byte, []string, error) {
	data, err := render()
	if err != nil {
		return nil, nil, err
	}
	return map[string][]byte{path: data}, []string{path}, nil
}
