package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/deck/internal/deck"
	"github.com/desertthunder/deck/internal/export"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/server"
	"github.com/desertthunder/deck/internal/shared"
	"github.com/desertthunder/deck/internal/store"
	"github.com/desertthunder/deck/internal/ui"
	"github.com/urfave/cli/v3"
)

// Present launches the interactive presenter.
//
// Logs go to the configured log file while the presenter owns the terminal. Without a usable database the deck
// still runs, starting at slide 1 and saving nothing.
func (r *Runner) Present(ctx context.Context, cmd *cli.Command) error {
	d, path, err := r.loadDeck(cmd)
	if err != nil {
		return err
	}
	opts, err := r.exportOptions(cmd)
	if err != nil {
		return err
	}

	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		progress  nav.ProgressStore
		session   ui.SessionCloser
		listeners []nav.Listener
		decks     []ui.DeckListener
	)
	if db, err := r.openDatabase(); err != nil {
		r.logger.Warn("presenting without saved progress", "error", err)
	} else {
		defer db.Close()
		progress = store.NewProgressRepository(db)
		recorder := store.NewSessionRecorder(store.NewSessionRepository(db), d.Title, r.logger)
		session = recorder
		listeners = append(listeners, recorder)
	}

	var watcher *deck.Watcher
	if path != "" && (cmd.Bool("watch") || r.config.Deck.Watch) {
		if watcher, err = deck.NewWatcher(path, 0); err != nil {
			return err
		}
		watcher.Start(ctx)
		defer watcher.Close()
	}

	if addr := cmd.String("serve"); addr != "" {
		hub := server.NewHub(r.logger)
		go hub.Run(ctx)
		listeners = append(listeners, hub)

		srv := server.New(server.Options{
			Deck:        d,
			Store:       progress,
			ProgressKey: r.config.Navigation.ProgressKey,
			Page:        opts.Page,
			Hub:         hub,
			Limiter:     server.LimiterFromConfig(r.config.Server),
			Logger:      r.logger,
		})
		decks = append(decks, srv)
		go func() {
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				r.logger.Error("follower server failed", "error", err)
			}
		}()
	}

	model := ui.NewModel(ctx, ui.Options{
		Config:     r.config,
		Deck:       d,
		Store:      progress,
		Exporter:   export.New(export.NewChromePrinter(r.config.Export.ChromeBin, r.logger), r.logger),
		Export:     opts,
		Session:    session,
		Watcher:    watcher,
		Listeners:  listeners,
		Decks:      decks,
		Logger:     r.logger,
		IsTerminal: r.isTerminal,
	})

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithMouseCellMotion())
	if err := model.Run(p); err != nil {
		return fmt.Errorf("error running presenter: %w", err)
	}

	return nil
}
