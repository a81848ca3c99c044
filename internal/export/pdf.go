package export

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/deck/internal/shared"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// cssPixelsPerInch converts page sizes for Chrome's print parameters.
const cssPixelsPerInch = 96.0

// ChromePrinter prints HTML with a headless Chrome launched per call.
type ChromePrinter struct {
	Bin    string // browser binary; looked up on PATH when empty
	Logger *log.Logger
}

// NewChromePrinter creates a printer using bin, or the system browser when bin is empty.
func NewChromePrinter(bin string, logger *log.Logger) *ChromePrinter {
	return &ChromePrinter{Bin: bin, Logger: logger}
}

// PrintPDF renders html in landscape with backgrounds and no margins.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html []byte, page Page) ([]byte, error) {
	bin := p.Bin
	if bin == "" {
		found, ok := launcher.LookPath()
		if !ok {
			return nil, fmt.Errorf("%w: no Chrome or Chromium found, set export.chrome_bin", shared.ErrBrowserLaunch)
		}
		bin = found
	}

	l := launcher.New().Bin(bin).Headless(true).Context(ctx)
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBrowserLaunch, err)
	}
	if p.Logger != nil {
		p.Logger.Debug("chrome launched", "bin", bin)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect to chrome: %v", shared.ErrBrowserLaunch, err)
	}
	defer browser.Close()

	tab, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err := tab.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := tab.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for document: %w", err)
	}

	width := float64(page.Width) / cssPixelsPerInch
	height := float64(page.Height) / cssPixelsPerInch
	zero := 0.0

	stream, err := tab.PDF(&proto.PagePrintToPDF{
		Landscape:         true,
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &width,
		PaperHeight:       &height,
		MarginTop:         &zero,
		MarginBottom:      &zero,
		MarginLeft:        &zero,
		MarginRight:       &zero,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF stream: %w", err)
	}
	return data, nil
}
