package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/deck/internal/anim"
	"github.com/desertthunder/deck/internal/deck"
	"github.com/desertthunder/deck/internal/export"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/server"
	"github.com/desertthunder/deck/internal/shared"
	tu "github.com/desertthunder/deck/internal/testing"
	json "github.com/goccy/go-json"
)

const progressKey = "presentationSlide"

type fakeExporter struct {
	calls int
	err   error
}

func (f *fakeExporter) Export(ctx context.Context, d *models.Deck, opts export.Options, progress chan<- export.ProgressUpdate) (*export.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &export.Result{Format: opts.Format, Files: []string{"presentation.pdf"}, Pages: d.Len()}, nil
}

type fakeSession struct {
	closed int
}

func (f *fakeSession) Close(time.Time) error {
	f.closed++
	return nil
}

// activations reports each activated slide without blocking the program.
type activations chan int

func (a activations) Activated(n int) {
	select {
	case a <- n:
	default:
	}
}

type deckRecorder struct {
	decks []*models.Deck
}

func (r *deckRecorder) SetDeck(d *models.Deck) {
	r.decks = append(r.decks, d)
}

type fixture struct {
	m        *Model
	store    *tu.MemoryProgressStore
	exporter *fakeExporter
	session  *fakeSession
	terminal bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, context.Background(), Options{})
}

// newFixtureWith builds a fixture on ctx, taking listeners and deck listeners from extra.
func newFixtureWith(t *testing.T, ctx context.Context, extra Options) *fixture {
	t.Helper()

	cfg := shared.DefaultConfig()
	cfg.Deck.Style = "notty"

	f := &fixture{
		store:    tu.NewMemoryProgressStore(),
		exporter: &fakeExporter{},
		session:  &fakeSession{},
	}
	f.m = NewModel(ctx, Options{
		Config:     cfg,
		Deck:       deck.Default(),
		Store:      f.store,
		Exporter:   f.exporter,
		Export:     export.Options{Format: export.FormatPDF, Output: "presentation"},
		Session:    f.session,
		Listeners:  extra.Listeners,
		Decks:      extra.Decks,
		Logger:     shared.NewLogger(&bytes.Buffer{}),
		IsTerminal: func() bool { return f.terminal },
	})
	return f
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (f *fixture) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = f.m.Update(keyMsg(k))
	}
	return cmd
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.m.Update(msg)
	return cmd
}

func assertSlide(t *testing.T, m *Model, n int) {
	t.Helper()
	if got := m.ctrl.State().Current; got != n {
		t.Fatalf("expected slide %d, got %d", n, got)
	}
	if got := m.activeSlide(); got != n {
		t.Errorf("expected slide %d active, got %d", n, got)
	}
	for i, lit := range m.dots {
		if lit != (i+1 == n) {
			t.Errorf("dot %d lit=%v with slide %d current", i+1, lit, n)
		}
	}
	if m.counter != n {
		t.Errorf("expected counter %d, got %d", n, m.counter)
	}
}

func TestInit(t *testing.T) {
	t.Run("starts at slide 1 without saved progress", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		assertSlide(t, f.m, 1)
		if f.m.prevOK || !f.m.nextOK {
			t.Error("expected only next enabled on the first slide")
		}
	})

	t.Run("restores saved progress", func(t *testing.T) {
		f := newFixture(t)
		f.store.Save(context.Background(), progressKey, 5)
		f.m.Init()
		assertSlide(t, f.m, 5)
	})

	t.Run("store failure falls back to slide 1", func(t *testing.T) {
		f := newFixture(t)
		f.store.LoadErr = errors.New("locked")
		f.m.Init()
		assertSlide(t, f.m, 1)
	})
}

func TestKeys(t *testing.T) {
	tc := []struct {
		name string
		keys []string
		want int
	}{
		{"right", []string{"right"}, 2},
		{"space", []string{" "}, 2},
		{"l then h", []string{"l", "l", "h"}, 2},
		{"left at first", []string{"left"}, 1},
		{"digit", []string{"7"}, 7},
		{"zero goes to ten", []string{"0"}, 10},
		{"end", []string{"end"}, 12},
		{"right at last stays", []string{"end", "right"}, 12},
		{"home", []string{"9", "home"}, 1},
		{"unknown key", []string{"x"}, 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.m.Init()
			f.press(tt.keys...)
			assertSlide(t, f.m, tt.want)
		})
	}
}

func TestSwipe(t *testing.T) {
	t.Run("left drag moves forward", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()

		f.send(tea.MouseMsg{X: 100, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		f.send(tea.MouseMsg{X: 20, Action: tea.MouseActionRelease})

		assertSlide(t, f.m, 2)
		if f.m.active[1] {
			t.Error("expected slide 1 inactive")
		}
	})

	t.Run("right drag moves back", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("4")

		f.send(tea.MouseMsg{X: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		f.send(tea.MouseMsg{X: 90, Action: tea.MouseActionRelease})

		assertSlide(t, f.m, 3)
	})

	t.Run("short drag is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()

		f.send(tea.MouseMsg{X: 60, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		f.send(tea.MouseMsg{X: 30, Action: tea.MouseActionRelease})

		assertSlide(t, f.m, 1)
	})
}

func TestQuit(t *testing.T) {
	t.Run("first slide quits immediately", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()

		if cmd := f.press("q"); cmd == nil {
			t.Fatal("expected quit command")
		}
		if !f.m.quitting {
			t.Error("expected model to be quitting")
		}
		if v, _ := f.store.Value(progressKey); v != 1 {
			t.Errorf("expected progress 1 saved, got %d", v)
		}
		if f.session.closed != 1 {
			t.Errorf("expected session closed once, got %d", f.session.closed)
		}
	})

	t.Run("mid deck asks for confirmation", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("6", "q")

		if !f.m.confirming || f.m.quitting {
			t.Fatal("expected confirmation prompt")
		}
		if !strings.Contains(f.m.View(), "Leave the presentation?") {
			t.Error("expected prompt in view")
		}

		f.press("n")
		if f.m.confirming || f.m.quitting {
			t.Fatal("expected prompt dismissed")
		}

		f.press("q", "y")
		if !f.m.quitting {
			t.Fatal("expected quit after confirming")
		}
		if v, _ := f.store.Value(progressKey); v != 6 {
			t.Errorf("expected progress 6 saved, got %d", v)
		}
		if f.m.View() != "" {
			t.Error("expected empty view after quitting")
		}
	})

	t.Run("last slide quits immediately", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("end", "q")
		if !f.m.quitting {
			t.Error("expected quit without confirmation on the last slide")
		}
	})

	t.Run("ctrl+c always quits", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("5", "ctrl+c")
		if !f.m.quitting {
			t.Error("expected ctrl+c to quit")
		}
	})
}

func runProgram(t *testing.T, ctx context.Context, m *Model) (*tea.Program, <-chan error) {
	t.Helper()
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	)
	errc := make(chan error, 1)
	go func() { errc <- m.Run(p) }()
	return p, errc
}

func waitForActivation(t *testing.T, ch activations, n int) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == n {
				return
			}
		case <-timeout:
			t.Fatalf("slide %d was never activated", n)
		}
	}
}

func waitForExit(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("program did not exit")
		return nil
	}
}

func TestRun(t *testing.T) {
	t.Run("cancelled context still saves progress", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		seen := make(activations, 16)
		f := newFixtureWith(t, ctx, Options{Listeners: []nav.Listener{seen}})

		p, errc := runProgram(t, ctx, f.m)
		p.Send(keyMsg("5"))
		waitForActivation(t, seen, 5)
		cancel()

		if err := waitForExit(t, errc); err != nil {
			t.Fatalf("expected clean exit on cancel, got %v", err)
		}
		if v, ok := f.store.Value(progressKey); !ok || v != 5 {
			t.Errorf("expected progress 5 saved, got %d (saved=%v)", v, ok)
		}
		if f.session.closed != 1 {
			t.Errorf("expected session closed once, got %d", f.session.closed)
		}
	})

	t.Run("quit key shuts down once", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		seen := make(activations, 16)
		f := newFixtureWith(t, ctx, Options{Listeners: []nav.Listener{seen}})

		p, errc := runProgram(t, ctx, f.m)
		p.Send(keyMsg("end"))
		waitForActivation(t, seen, models.DefaultSlideCount)
		p.Send(keyMsg("q"))

		if err := waitForExit(t, errc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, _ := f.store.Value(progressKey); v != models.DefaultSlideCount {
			t.Errorf("expected progress %d saved, got %d", models.DefaultSlideCount, v)
		}
		if f.session.closed != 1 {
			t.Errorf("expected session closed once, got %d", f.session.closed)
		}
	})

	t.Run("Shutdown is idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("4")
		f.m.Shutdown()
		f.press("6")
		f.m.Shutdown()

		if v, _ := f.store.Value(progressKey); v != 4 {
			t.Errorf("expected first shutdown to win with 4, got %d", v)
		}
		if f.session.closed != 1 {
			t.Errorf("expected session closed once, got %d", f.session.closed)
		}
	})
}

func TestFullscreen(t *testing.T) {
	t.Run("refused without a terminal", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()

		if cmd := f.press("f"); cmd != nil {
			t.Error("expected no command")
		}
		if f.m.fullscreen {
			t.Error("expected fullscreen to stay off")
		}
		assertSlide(t, f.m, 1)
	})

	t.Run("toggles on a terminal", func(t *testing.T) {
		f := newFixture(t)
		f.terminal = true
		f.m.Init()

		if cmd := f.press("f"); cmd == nil || !f.m.fullscreen {
			t.Fatal("expected fullscreen on")
		}
		if cmd := f.press("f"); cmd == nil || f.m.fullscreen {
			t.Fatal("expected fullscreen off")
		}
	})
}

func TestExport(t *testing.T) {
	t.Run("navigation is suspended until done", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("4")

		if cmd := f.press("p"); cmd == nil {
			t.Fatal("expected export commands")
		}
		if !f.m.Exporting() {
			t.Fatal("expected export mode")
		}
		if !strings.Contains(f.m.notice.text, "Exporting PDF") {
			t.Errorf("unexpected notice %q", f.m.notice.text)
		}

		f.press("right", "9")
		if f.m.ctrl.State().Current != 4 {
			t.Fatalf("expected navigation ignored during export, at %d", f.m.ctrl.State().Current)
		}

		token := f.m.exportToken
		if cmd := f.send(exportStartMsg(token)); cmd == nil {
			t.Fatal("expected export to start")
		}

		f.send(exportDoneMsg(token, &export.Result{Files: []string{"presentation.pdf"}}, nil))
		if f.m.Exporting() {
			t.Fatal("expected export mode to end")
		}
		assertSlide(t, f.m, 4)
		if !strings.Contains(f.m.notice.text, "presentation.pdf") {
			t.Errorf("expected saved notice, got %q", f.m.notice.text)
		}

		f.press("right")
		assertSlide(t, f.m, 5)
	})

	t.Run("fallback releases and late completion is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("3", "p")
		token := f.m.exportToken
		f.send(exportStartMsg(token))

		f.send(exportFallbackMsg(token))
		if f.m.Exporting() {
			t.Fatal("expected fallback to release navigation")
		}
		assertSlide(t, f.m, 3)

		f.press("right")
		f.send(exportDoneMsg(token, &export.Result{Files: []string{"presentation.pdf"}}, nil))
		assertSlide(t, f.m, 4)
	})

	t.Run("second export while running is refused", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("p")
		token := f.m.exportToken
		f.send(exportFallbackMsg(token))

		f.press("p")
		if f.m.exportToken != token {
			t.Error("expected no new export while the first is running")
		}
		if !strings.Contains(f.m.notice.text, shared.ErrExportInProgress.Error()) {
			t.Errorf("unexpected notice %q", f.m.notice.text)
		}
	})

	t.Run("failure is reported", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("p")
		token := f.m.exportToken

		f.send(exportDoneMsg(token, nil, shared.ErrBrowserLaunch))
		if f.m.Exporting() || !f.m.notice.err {
			t.Error("expected released navigation and an error notice")
		}
	})

	t.Run("stale start is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("p")
		if cmd := f.send(exportStartMsg(f.m.exportToken + 1)); cmd != nil {
			t.Error("expected stale start to be ignored")
		}
	})
}

func TestReveal(t *testing.T) {
	f := newFixture(t)
	f.m.Init()
	f.press("7")

	step := anim.Step{Epoch: f.m.trigger.Epoch(), Slide: 7, Group: 0, Item: 0}
	if cmd := f.send(revealMsg(step)); cmd == nil || !f.m.animating {
		t.Fatal("expected frame ticker to start")
	}

	f.press("right")
	f.m.animating = false
	if cmd := f.send(revealMsg(step)); cmd != nil || f.m.animating {
		t.Error("expected stale reveal to be dropped")
	}
}

func TestNotice(t *testing.T) {
	f := newFixture(t)
	f.m.Init()

	f.m.notify("first", false)
	stale := f.m.notice.token
	f.m.notify("second", false)

	f.send(noticeExpiredMsg(stale))
	if f.m.notice.text != "second" {
		t.Fatalf("expected newer notice kept, got %q", f.m.notice.text)
	}

	f.send(noticeExpiredMsg(f.m.notice.token))
	if f.m.notice.text != "" {
		t.Errorf("expected notice dismissed, got %q", f.m.notice.text)
	}
}

func shortDeck() *models.Deck {
	d := &models.Deck{Title: "Short", Slides: []models.Slide{{Title: "One"}, {Title: "Two"}, {Title: "Three"}}}
	d.Number()
	return d
}

func TestSetDeck(t *testing.T) {
	t.Run("clamps to the shorter deck", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("end")
		f.m.SetDeck(shortDeck())

		assertSlide(t, f.m, 3)
		if len(f.m.dots) != 3 {
			t.Errorf("expected 3 dots, got %d", len(f.m.dots))
		}
	})

	t.Run("shrinking during an export keeps a slide drawn", func(t *testing.T) {
		f := newFixture(t)
		f.m.Init()
		f.press("end", "p")
		if !f.m.Exporting() {
			t.Fatal("expected export to suspend navigation")
		}
		f.m.SetDeck(shortDeck())

		assertSlide(t, f.m, 3)
		if !strings.Contains(f.m.View(), "Three") {
			t.Error("expected the clamped slide in view while exporting")
		}
	})

	t.Run("deck listeners receive the reload", func(t *testing.T) {
		rec := &deckRecorder{}
		f := newFixtureWith(t, context.Background(), Options{Decks: []DeckListener{rec}})
		f.m.Init()

		short := shortDeck()
		f.m.SetDeck(short)
		if len(rec.decks) != 1 || rec.decks[0] != short {
			t.Errorf("expected the reloaded deck once, got %v", rec.decks)
		}
	})

	t.Run("follower server serves the reloaded deck", func(t *testing.T) {
		srv := server.New(server.Options{
			Deck:        deck.Default(),
			ProgressKey: progressKey,
			Logger:      shared.NewLogger(&bytes.Buffer{}),
		})
		f := newFixtureWith(t, context.Background(), Options{Decks: []DeckListener{srv}})
		f.m.Init()
		f.m.SetDeck(shortDeck())

		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deck", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got models.Deck
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if got.Title != "Short" || got.Len() != 3 {
			t.Errorf("expected reloaded deck, got %q with %d slides", got.Title, got.Len())
		}

		rec = httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slides/5", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 past the reloaded deck, got %d", rec.Code)
		}
	})
}

func TestView(t *testing.T) {
	f := newFixture(t)
	f.m.Init()
	f.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	f.press("7")

	view := f.m.View()
	for _, want := range []string{"Timeline", "7 / 12", "next"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}

	f.press("?")
	if !f.m.help.ShowAll || !strings.Contains(f.m.View(), "fullscreen") {
		t.Error("expected full help")
	}
}

func TestRenderElement(t *testing.T) {
	t.Run("hidden item is blank", func(t *testing.T) {
		out := renderElement(0, anim.Element{Kind: models.GroupFade, Text: "hello"}, 40)
		if strings.Contains(out, "hello") {
			t.Error("expected hidden element not drawn")
		}
	})

	t.Run("timeline item is numbered and at rest", func(t *testing.T) {
		out := renderElement(2, anim.Element{Kind: models.GroupTimeline, Text: "launch", Progress: 1}, 40)
		if !strings.Contains(out, "3. launch") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.HasPrefix(out, strings.Repeat(" ", anim.TimelineOffset)) {
			t.Errorf("expected resting indent, got %q", out)
		}
	})

	t.Run("component item keeps its height", func(t *testing.T) {
		rising := renderElement(0, anim.Element{Kind: models.GroupComponent, Text: "x", Progress: 0.2}, 40)
		rest := renderElement(0, anim.Element{Kind: models.GroupComponent, Text: "x", Progress: 1}, 40)
		if strings.Count(rising, "\n") != strings.Count(rest, "\n") {
			t.Errorf("expected equal heights, got %q and %q", rising, rest)
		}
		if !strings.HasPrefix(rising, "\n") || strings.HasPrefix(rest, "\n") {
			t.Error("expected rising item one row lower")
		}
	})
}
