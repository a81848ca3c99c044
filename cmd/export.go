package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/deck/internal/export"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/shared"
	"github.com/desertthunder/deck/internal/ui"
	"github.com/urfave/cli/v3"
)

// exportOptions starts from the [export] config section and applies --format, --output and --timeout.
func (r *Runner) exportOptions(cmd *cli.Command) (export.Options, error) {
	opts, err := export.OptionsFromConfig(r.config.Export)
	if err != nil {
		return export.Options{}, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	if f := cmd.String("format"); f != "" {
		if opts.Format, err = export.ParseFormat(f); err != nil {
			return export.Options{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
	}
	if o := cmd.String("output"); o != "" {
		opts.Output = o
	}
	if t := cmd.Duration("timeout"); t > 0 {
		opts.Timeout = t
	}
	return opts, nil
}

// Export writes the deck in the requested format and lists the files written.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	d, _, err := r.loadDeck(cmd)
	if err != nil {
		return err
	}
	opts, err := r.exportOptions(cmd)
	if err != nil {
		return err
	}

	exporter := export.New(export.NewChromePrinter(r.config.Export.ChromeBin, r.logger), r.logger)
	result, err := r.runExport(ctx, exporter, d, opts)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Exported %s as %s (%d pages)", d.Title, result.Format, result.Pages))
	for _, f := range result.Files {
		r.writePlain("  %s\n", f)
	}

	if cmd.Bool("open") && len(result.Files) > 0 {
		if err := shared.OpenFile(result.Files[0]); err != nil {
			r.logger.Warn("failed to open export", "file", result.Files[0], "error", err)
		}
	}
	return nil
}

// runExport prints progress messages as they arrive.
func (r *Runner) runExport(ctx context.Context, exporter ui.Exporter, d *models.Deck, opts export.Options) (*export.Result, error) {
	progress := make(chan export.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := exporter.Export(ctx, d, opts, progress)
	close(progress)
	<-done

	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return result, nil
}
