package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "sessions")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestProgressRepository(t *testing.T) {
	const key = "presentationSlide"
	ctx := context.Background()

	t.Run("Load missing", func(t *testing.T) {
		repo := NewProgressRepository(setupTestDB(t))

		_, err := repo.Load(ctx, key)
		if !errors.Is(err, shared.ErrProgressNotFound) {
			t.Fatalf("expected ErrProgressNotFound, got %v", err)
		}
	})

	t.Run("Save and Load", func(t *testing.T) {
		repo := NewProgressRepository(setupTestDB(t))

		if err := repo.Save(ctx, key, 5); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := repo.Save(ctx, key, 7); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		got, err := repo.Load(ctx, key)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}

		p, err := repo.Get(ctx, key)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if p.Key != key || p.UpdatedAt.IsZero() {
			t.Errorf("unexpected row %+v", p)
		}
	})

	t.Run("Save rejects invalid input", func(t *testing.T) {
		repo := NewProgressRepository(setupTestDB(t))

		if err := repo.Save(ctx, key, 0); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for slide 0, got %v", err)
		}
		if err := repo.Save(ctx, "", 3); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty key, got %v", err)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		repo := NewProgressRepository(setupTestDB(t))
		repo.Save(ctx, key, 4)

		if err := repo.Reset(ctx, key); err != nil {
			t.Fatalf("failed to reset: %v", err)
		}
		if _, err := repo.Load(ctx, key); !errors.Is(err, shared.ErrProgressNotFound) {
			t.Errorf("expected progress cleared, got %v", err)
		}
		if err := repo.Reset(ctx, key); err != nil {
			t.Errorf("expected resetting twice to succeed, got %v", err)
		}
	})

	t.Run("restores the controller", func(t *testing.T) {
		repo := NewProgressRepository(setupTestDB(t))
		repo.Save(ctx, key, 5)

		c := nav.New(models.DefaultSlideCount, nil)
		if err := c.Restore(ctx, repo, key); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.State().Current != 5 {
			t.Errorf("expected slide 5, got %d", c.State().Current)
		}

		c.GoTo(9)
		if err := c.Persist(ctx, repo, key); err != nil {
			t.Fatalf("failed to persist: %v", err)
		}
		if got, _ := repo.Load(ctx, key); got != 9 {
			t.Errorf("expected 9 persisted, got %d", got)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProgressRepository(db)
		db.Close()

		if _, err := repo.Load(ctx, key); err == nil || errors.Is(err, shared.ErrProgressNotFound) {
			t.Errorf("expected a database error, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		s := models.NewSession("Flood Warning", 1)

		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if s.ID() == "" {
			t.Error("session ID should be set after creation")
		}
		if s.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", s.Sequence())
		}
	})

	t.Run("Create rejects invalid session", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		if err := repo.Create(models.NewSession("", 1)); err == nil {
			t.Fatal("expected validation error for empty title")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		s := models.NewSession("Flood Warning", 3)
		repo.Create(s)

		got, err := repo.Get(s.ID())
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.DeckTitle() != "Flood Warning" || got.StartSlide() != 3 || got.IsEnded() {
			t.Errorf("unexpected session %+v", got)
		}

		if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		s := models.NewSession("Flood Warning", 1)
		repo.Create(s)

		s.Visit(2)
		s.Visit(3)
		s.End(time.Now())
		if err := repo.Update(s); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		got, _ := repo.Get(s.ID())
		if got.LastSlide() != 3 || got.Visited() != 3 || !got.IsEnded() {
			t.Errorf("expected last=3 visited=3 ended, got last=%d visited=%d ended=%v", got.LastSlide(), got.Visited(), got.IsEnded())
		}
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		s := models.NewSession("Flood Warning", 1)
		s.SetID("nonexistent-id")

		if err := repo.Update(s); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		s := models.NewSession("Flood Warning", 1)
		repo.Create(s)

		if err := repo.Delete(s.ID()); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		if _, err := repo.Get(s.ID()); err == nil {
			t.Error("expected error when getting deleted session")
		}
		if err := repo.Delete(s.ID()); err == nil {
			t.Error("expected error when deleting twice")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		for i := 1; i <= 4; i++ {
			if err := repo.Create(models.NewSession("Flood Warning", i)); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}
		}

		all, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("expected 4 sessions, got %d", len(all))
		}
		if all[0].Sequence() != 4 {
			t.Errorf("expected newest first, got sequence %d", all[0].Sequence())
		}

		recent, _ := repo.List(2)
		if len(recent) != 2 {
			t.Errorf("expected 2 sessions, got %d", len(recent))
		}

		repo.Delete(all[0].ID())
		if rest, _ := repo.List(0); len(rest) != 3 {
			t.Errorf("expected deleted session excluded, got %d", len(rest))
		}
	})

	t.Run("Purge", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		repo.Create(models.NewSession("Flood Warning", 1))
		repo.Create(models.NewSession("Flood Warning", 2))

		n, err := repo.Purge()
		if err != nil {
			t.Fatalf("failed to purge: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 purged, got %d", n)
		}
		if rest, _ := repo.List(0); len(rest) != 0 {
			t.Errorf("expected no sessions, got %d", len(rest))
		}
	})
}

func TestSessionRecorder(t *testing.T) {
	t.Run("records activations", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		rec := NewSessionRecorder(repo, "Flood Warning", nil)

		c := nav.New(models.DefaultSlideCount, nil, rec)
		c.Start(2)
		c.Next()
		c.Next()

		if err := rec.Close(time.Now()); err != nil {
			t.Fatalf("failed to close: %v", err)
		}

		got, err := repo.Get(rec.Session().ID())
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.StartSlide() != 2 || got.LastSlide() != 4 || got.Visited() != 3 || !got.IsEnded() {
			t.Errorf("unexpected session start=%d last=%d visited=%d ended=%v",
				got.StartSlide(), got.LastSlide(), got.Visited(), got.IsEnded())
		}
	})

	t.Run("close before start", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		rec := NewSessionRecorder(repo, "Flood Warning", nil)

		if err := rec.Close(time.Now()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if all, _ := repo.List(0); len(all) != 0 {
			t.Errorf("expected nothing written, got %d sessions", len(all))
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		rec := NewSessionRecorder(repo, "Flood Warning", nil)
		rec.Activated(1)

		now := time.Now()
		if err := rec.Close(now); err != nil {
			t.Fatalf("failed to close: %v", err)
		}
		if err := rec.Close(now.Add(time.Hour)); err != nil {
			t.Errorf("expected second close to be ignored, got %v", err)
		}
	})
}
