package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/shared"
	"github.com/desertthunder/deck/internal/store"
	"github.com/urfave/cli/v3"
)

// sessionRow is the JSON and table shape of a session.
type sessionRow struct {
	ID        string     `json:"id"`
	Sequence  int        `json:"sequence"`
	Deck      string     `json:"deck"`
	Start     int        `json:"start_slide"`
	Last      int        `json:"last_slide"`
	Visited   int        `json:"visited"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func newSessionRow(s *models.Session) sessionRow {
	return sessionRow{
		ID:        s.ID(),
		Sequence:  s.Sequence(),
		Deck:      s.DeckTitle(),
		Start:     s.StartSlide(),
		Last:      s.LastSlide(),
		Visited:   s.Visited(),
		StartedAt: s.StartedAt(),
		EndedAt:   s.EndedAt(),
	}
}

// ProgressShow prints the saved slide.
func (r *Runner) ProgressShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	key := r.config.Navigation.ProgressKey
	p, err := store.NewProgressRepository(db).Get(ctx, key)
	if errors.Is(err, shared.ErrProgressNotFound) {
		r.writePlain("No saved progress; the next run starts at slide 1\n")
		return nil
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, true)
	}
	r.writePlain("Slide %d (saved %s)\n", p.Slide, p.UpdatedAt.Local().Format(time.DateTime))
	return nil
}

// ProgressReset forgets the saved slide.
func (r *Runner) ProgressReset(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewProgressRepository(db).Reset(ctx, r.config.Navigation.ProgressKey); err != nil {
		return err
	}
	r.logger.Info("progress reset", "key", r.config.Navigation.ProgressKey)
	r.writePlain("✓ Progress reset\n")
	return nil
}

// ProgressHistory lists recent sessions, newest first.
func (r *Runner) ProgressHistory(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidFlag)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := store.NewSessionRepository(db).List(limit)
	if err != nil {
		return err
	}

	rows := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, newSessionRow(s))
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Sessions (%d)", len(rows)))
	for _, s := range sessions {
		status := "open"
		if s.IsEnded() {
			status = s.Duration().Round(time.Second).String()
		}
		r.writePlain("#%-4d %s  %-24s slides %d→%d  visited %-3d %s\n",
			s.Sequence(), s.StartedAt().Local().Format(time.DateTime), s.DeckTitle(),
			s.StartSlide(), s.LastSlide(), s.Visited(), status)
	}
	return nil
}

// ProgressDelete removes a session from the history.
func (r *Runner) ProgressDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: session id", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewSessionRepository(db).Delete(id); err != nil {
		return err
	}
	r.writePlain("✓ Session %s deleted\n", id)
	return nil
}

// ProgressPurge clears the session history.
func (r *Runner) ProgressPurge(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := store.NewSessionRepository(db).Purge()
	if err != nil {
		return err
	}
	r.writePlain("✓ Cleared %d sessions\n", n)
	return nil
}
