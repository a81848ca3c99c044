package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/server"
	"github.com/desertthunder/deck/internal/store"
	"github.com/urfave/cli/v3"
)

// Serve serves the deck until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	d, _, err := r.loadDeck(cmd)
	if err != nil {
		return err
	}
	opts, err := r.exportOptions(cmd)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	}

	var progress nav.ProgressStore
	if db, err := r.openDatabase(); err != nil {
		r.logger.Warn("serving without the progress API", "error", err)
	} else {
		defer db.Close()
		progress = store.NewProgressRepository(db)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := server.NewHub(r.logger)
	go hub.Run(ctx)

	srv := server.New(server.Options{
		Deck:        d,
		Store:       progress,
		ProgressKey: r.config.Navigation.ProgressKey,
		Page:        opts.Page,
		Hub:         hub,
		Limiter:     server.LimiterFromConfig(r.config.Server),
		Logger:      r.logger,
	})

	r.writePlain("Serving %q on http://%s\n", d.Title, addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("failed to serve deck: %w", err)
	}
	return nil
}
