package deck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/shared"
	"go.uber.org/goleak"
)

func TestDefault(t *testing.T) {
	d := Default()

	if d.Len() != models.DefaultSlideCount {
		t.Fatalf("expected %d slides, got %d", models.DefaultSlideCount, d.Len())
	}

	for i, s := range d.Slides {
		if s.Ordinal != i+1 {
			t.Errorf("slide %d has ordinal %d", i+1, s.Ordinal)
		}
	}

	t.Run("covers every group kind", func(t *testing.T) {
		seen := map[models.GroupKind]bool{}
		for _, s := range d.Slides {
			for _, g := range s.Groups {
				seen[g.Kind] = true
			}
		}
		for _, k := range []models.GroupKind{models.GroupFade, models.GroupScale, models.GroupTimeline, models.GroupComponent} {
			if !seen[k] {
				t.Errorf("default deck has no %s group", k)
			}
		}
	})

	t.Run("groups attach to their slide", func(t *testing.T) {
		s, _ := d.Slide(7)
		g, ok := s.Group(models.GroupTimeline)
		if !ok || len(g.Items) != 5 {
			t.Errorf("expected five timeline items on slide 7, got %+v", s.Groups)
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("valid deck", func(t *testing.T) {
		d, err := Parse([]byte(`title = "Talk"

[[slides]]
title = "One"

[[slides]]
title = "Two"

[[slides.groups]]
kind = "scale"
items = ["a", "b"]
`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Len() != 2 || d.Slides[1].Ordinal != 2 {
			t.Errorf("unexpected deck %+v", d)
		}
		if len(d.Slides[0].Groups) != 0 || len(d.Slides[1].Groups) != 1 {
			t.Errorf("groups attached to the wrong slide: %+v", d.Slides)
		}
	})

	tc := []struct {
		name string
		data string
	}{
		{"malformed", "[[slides]\ntitle="},
		{"no slides", `title = "Empty"`},
		{"bad kind", "[[slides]]\ntitle = \"x\"\n[[slides.groups]]\nkind = \"spin\"\n"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, shared.ErrInvalidDeck) {
				t.Errorf("expected ErrInvalidDeck, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		d, err := Load("")
		if err != nil || d.Len() != models.DefaultSlideCount {
			t.Fatalf("expected default deck, got %v, %v", d, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, shared.ErrDeckNotFound) {
			t.Errorf("expected ErrDeckNotFound, got %v", err)
		}
	})

	t.Run("round trip through WriteDefault", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.toml")
		if err := WriteDefault(path); err != nil {
			t.Fatalf("failed to write deck: %v", err)
		}
		if err := WriteDefault(path); err == nil {
			t.Error("expected error when deck file exists")
		}

		d, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load deck: %v", err)
		}
		if d.Title != Default().Title {
			t.Errorf("expected title %q, got %q", Default().Title, d.Title)
		}
	})
}

func TestWatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.toml")
	if err := os.WriteFile(path, []byte("title = \"a\"\n"), 0644); err != nil {
		t.Fatalf("failed to write deck: %v", err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	t.Run("ignores sibling files", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write sibling: %v", err)
		}
		select {
		case <-w.Changes():
			t.Error("unexpected change for sibling file")
		case <-time.After(150 * time.Millisecond):
		}
	})

	t.Run("reports edits to the deck", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("title = \"b\"\n"), 0644); err != nil {
			t.Fatalf("failed to rewrite deck: %v", err)
		}
		select {
		case <-w.Changes():
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for change")
		}
	})

	if err := w.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}
