package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/deck/internal/anim"
	"github.com/desertthunder/deck/internal/deck"
	"github.com/desertthunder/deck/internal/export"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
	"golang.org/x/term"
)

var _ nav.Renderer = (*Model)(nil)

// Exporter writes a deck to disk; satisfied by [export.Exporter].
type Exporter interface {
	Export(ctx context.Context, d *models.Deck, opts export.Options, progress chan<- export.ProgressUpdate) (*export.Result, error)
}

// SessionCloser ends the presenting session on quit.
type SessionCloser interface {
	Close(now time.Time) error
}

// DeckListener receives every deck swapped in by a reload, e.g. the follower server.
type DeckListener interface {
	SetDeck(d *models.Deck)
}

// Options holds the presenter's dependencies. Only Deck is required.
type Options struct {
	Config     *shared.Config
	Deck       *models.Deck
	Store      nav.ProgressStore
	Exporter   Exporter
	Export     export.Options
	Session    SessionCloser
	Watcher    *deck.Watcher
	Listeners  []nav.Listener
	Decks      []DeckListener
	Logger     *log.Logger
	IsTerminal func() bool
	Now        func() time.Time
}

type notice struct {
	text  string
	err   bool
	token int
}

// Model represents the presenter state.
type Model struct {
	ctx     context.Context
	cfg     *shared.Config
	deck    *models.Deck
	ctrl    *nav.Controller
	trigger *anim.Trigger
	store   nav.ProgressStore
	session SessionCloser
	watcher *deck.Watcher
	decks   []DeckListener
	logger  *log.Logger
	closed  bool

	exporter      Exporter
	exportOpts    export.Options
	exportToken   int
	exportRunning bool
	release       func()
	progressChan  chan export.ProgressUpdate
	progress      export.ProgressUpdate

	// view state driven through nav.Renderer
	active  map[int]bool
	dots    []bool
	counter int
	prevOK  bool
	nextOK  bool

	swipe      *nav.Swipe
	animating  bool
	fullscreen bool
	confirming bool
	quitting   bool
	notice     notice

	width    int
	height   int
	markdown *glamour.TermRenderer
	bodies   map[int]string
	help     help.Model
	keys     keyMap

	isTerminal func() bool
	now        func() time.Time
}

// NewModel creates a presenter for opts.Deck. Navigation starts in [Model.Init].
func NewModel(ctx context.Context, opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = shared.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	isTerminal := opts.IsTerminal
	if isTerminal == nil {
		isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Model{
		ctx:        ctx,
		cfg:        cfg,
		deck:       opts.Deck,
		store:      opts.Store,
		session:    opts.Session,
		watcher:    opts.Watcher,
		decks:      opts.Decks,
		logger:     logger,
		exporter:   opts.Exporter,
		exportOpts: opts.Export,
		active:     make(map[int]bool, opts.Deck.Len()),
		dots:       make([]bool, opts.Deck.Len()),
		swipe:      nav.NewSwipe(cfg.Navigation.SwipeThreshold),
		bodies:     make(map[int]string),
		help:       help.New(),
		keys:       newKeyMap(),
		isTerminal: isTerminal,
		now:        now,
		width:      80,
	}

	m.trigger = anim.NewTrigger(opts.Deck, anim.TimingFromConfig(cfg.Animation))
	listeners := append([]nav.Listener{m.trigger}, opts.Listeners...)
	m.ctrl = nav.New(opts.Deck.Len(), m, listeners...)
	return m
}

// Controller exposes the navigation controller, e.g. for followers.
func (m *Model) Controller() *nav.Controller {
	return m.ctrl
}

// Init restores saved progress, schedules the first reveal and starts watching the deck file.
func (m *Model) Init() tea.Cmd {
	if err := m.ctrl.Restore(m.ctx, m.store, m.cfg.Navigation.ProgressKey); err != nil {
		m.logger.Warn("failed to restore progress", "error", err)
	}
	return tea.Batch(m.schedule(), m.waitForWatch())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.markdown = nil
		m.bodies = make(map[int]string)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case Msg:
		return m, m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgReveal:
		if m.trigger.Reveal(msg.data.(anim.Step), m.now()) && !m.animating {
			m.animating = true
			return m.frame()
		}

	case MsgFrame:
		if m.trigger.Advance(m.now()) {
			return m.frame()
		}
		m.animating = false

	case MsgNoticeExpired:
		if msg.data.(int) == m.notice.token {
			m.notice = notice{token: m.notice.token}
		}

	case MsgExportStart:
		return m.startExport(msg.data.(int))

	case MsgExportProgress:
		m.progress = msg.data.(export.ProgressUpdate)
		return m.waitForProgress()

	case MsgExportDone:
		res := msg.data.(exportResult)
		if res.token != m.exportToken {
			return nil
		}
		m.exportRunning = false
		var cmd tea.Cmd
		if res.err != nil {
			m.logger.Error("export failed", "error", res.err)
			cmd = m.notify(fmt.Sprintf("Export failed: %v", res.err), true)
		} else {
			m.logger.Info("export finished", "files", res.result.Files)
			cmd = m.notify(fmt.Sprintf("Saved %s", strings.Join(res.result.Files, ", ")), false)
		}
		return tea.Batch(cmd, m.endExport())

	case MsgExportFallback:
		if msg.data.(int) == m.exportToken {
			return m.endExport()
		}

	case MsgDeckChanged:
		return tea.Batch(m.reload(), m.waitForWatch())

	case MsgWatchError:
		m.logger.Warn("deck watcher error", "error", msg.data.(error))
		return m.waitForWatch()
	}
	return nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.yes):
			return m, m.quit()
		case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
			m.confirming = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		if m.shouldConfirmQuit() {
			m.confirming = true
			return m, nil
		}
		return m, m.quit()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.export):
		return m, m.beginExport()
	}

	in := nav.KeyIntent(msg.String())
	if in.Action == nav.ActionFullscreen {
		return m, m.toggleFullscreen()
	}
	return m, m.apply(in)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		m.swipe.Begin(msg.X)
	case tea.MouseActionRelease:
		return m.apply(m.swipe.End(msg.X))
	}
	return nil
}

func (m *Model) apply(in nav.Intent) tea.Cmd {
	if !m.ctrl.Apply(in) {
		return nil
	}
	return m.schedule()
}

// schedule turns the trigger's pending reveal steps into ticks.
func (m *Model) schedule() tea.Cmd {
	steps := m.trigger.Drain()
	if len(steps) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(steps))
	for _, step := range steps {
		cmds = append(cmds, tea.Tick(step.Delay, func(time.Time) tea.Msg { return revealMsg(step) }))
	}
	return tea.Batch(cmds...)
}

func (m *Model) frame() tea.Cmd {
	return tea.Tick(shared.Millis(m.cfg.Animation.FrameMS), func(time.Time) tea.Msg { return frameMsg() })
}

func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.notice = notice{text: text, err: isErr, token: m.notice.token + 1}
	token := m.notice.token
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return noticeExpiredMsg(token) })
}

func (m *Model) shouldConfirmQuit() bool {
	s := m.ctrl.State()
	return m.cfg.Navigation.ConfirmQuit && s.HasPrevious() && s.HasNext()
}

// quit saves progress and closes the session before exiting.
func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.confirming = false
	m.Shutdown()
	return tea.Quit
}

// Shutdown saves progress and closes the session. Only the first call has any effect.
//
// Progress is saved even after the presenter's context is cancelled.
func (m *Model) Shutdown() {
	if m.closed {
		return
	}
	m.closed = true

	ctx := context.WithoutCancel(m.ctx)
	if err := m.ctrl.Persist(ctx, m.store, m.cfg.Navigation.ProgressKey); err != nil {
		m.logger.Warn("failed to save progress", "error", err)
	}
	if m.session != nil {
		if err := m.session.Close(m.now()); err != nil {
			m.logger.Warn("failed to close session", "error", err)
		}
	}
}

// Run drives p, which must be built around m, and shuts m down however the program ends.
//
// Cancelling the presenter's context counts as a clean exit.
func (m *Model) Run(p *tea.Program) error {
	_, err := p.Run()
	m.Shutdown()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		m.logger.Info("presenter stopped", "cause", context.Cause(m.ctx))
		return nil
	}
	return err
}

func (m *Model) toggleFullscreen() tea.Cmd {
	if !m.isTerminal() {
		m.logger.Warn("fullscreen unavailable", "error", shared.ErrNotATerminal)
		return nil
	}
	m.fullscreen = !m.fullscreen
	if m.fullscreen {
		return tea.EnterAltScreen
	}
	return tea.ExitAltScreen
}

// beginExport suspends navigation and shows the notice; the export itself starts after the notice delay.
func (m *Model) beginExport() tea.Cmd {
	if m.exporter == nil {
		return m.notify("Export is not configured", true)
	}
	if m.exportRunning {
		return m.notify(shared.ErrExportInProgress.Error(), true)
	}

	release, err := m.ctrl.Suspend()
	if err != nil {
		return m.notify(err.Error(), true)
	}

	m.release = release
	m.exportRunning = true
	m.exportToken++
	m.trigger.Settle()
	m.progress = export.ProgressUpdate{}

	token := m.exportToken
	delay := shared.Millis(m.cfg.Export.NoticeDelayMS)
	return tea.Batch(
		m.notify(fmt.Sprintf("Exporting %s, one page per slide...", strings.ToUpper(string(m.exportOpts.Format))), false),
		tea.Tick(delay, func(time.Time) tea.Msg { return exportStartMsg(token) }),
	)
}

// startExport runs the exporter and arms the fallback that releases navigation if it takes too long.
func (m *Model) startExport(token int) tea.Cmd {
	if token != m.exportToken || !m.exportRunning {
		return nil
	}

	m.progressChan = make(chan export.ProgressUpdate, 32)
	progress := m.progressChan
	d := m.deck
	opts := m.exportOpts

	run := func() tea.Msg {
		defer close(progress)
		result, err := m.exporter.Export(m.ctx, d, opts, progress)
		return exportDoneMsg(token, result, err)
	}
	fallback := tea.Tick(shared.Millis(m.cfg.Export.FallbackTimeoutMS), func(time.Time) tea.Msg {
		return exportFallbackMsg(token)
	})

	return tea.Batch(run, fallback, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progressChan
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return exportProgressMsg(update)
	}
}

// endExport releases navigation once; later calls do nothing.
func (m *Model) endExport() tea.Cmd {
	if m.release == nil {
		return nil
	}
	m.release()
	m.release = nil
	return m.schedule()
}

// Exporting reports whether navigation is suspended for an export.
func (m *Model) Exporting() bool {
	return m.ctrl.Suspended()
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes():
			if !ok {
				return nil
			}
			return deckChangedMsg()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrorMsg(err)
		}
	}
}

func (m *Model) reload() tea.Cmd {
	d, err := deck.Load(m.watcher.Path())
	if err != nil {
		m.logger.Warn("failed to reload deck", "error", err)
		return m.notify(fmt.Sprintf("Reload failed: %v", err), true)
	}
	return m.SetDeck(d)
}

// SetDeck swaps in d, clamping the current slide to its length.
func (m *Model) SetDeck(d *models.Deck) tea.Cmd {
	m.deck = d
	m.trigger.SetDeck(d)
	m.bodies = make(map[int]string)
	m.ctrl.Resize(d.Len())
	for _, l := range m.decks {
		l.SetDeck(d)
	}
	m.logger.Info("deck reloaded", "slides", d.Len())
	return tea.Batch(m.notify(fmt.Sprintf("Reloaded %q", d.Title), false), m.schedule())
}

// Deactivate implements [nav.Renderer].
func (m *Model) Deactivate() {
	for n := range m.active {
		m.active[n] = false
	}
}

// Render implements [nav.Renderer].
func (m *Model) Render(s nav.State) {
	m.active[s.Current] = true
}

// RenderHighlight implements [nav.Renderer].
func (m *Model) RenderHighlight(s nav.State) {
	if len(m.dots) != s.Total {
		m.dots = make([]bool, s.Total)
	}
	for i := range m.dots {
		m.dots[i] = i+1 == s.Current
	}
	m.counter = s.Current
	m.prevOK = s.HasPrevious()
	m.nextOK = s.HasNext()
}

// View renders the active slide with its navigation bar.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.help.Render(m.deck.Title))
	b.WriteString("\n\n")

	if slide, ok := m.deck.Slide(m.activeSlide()); ok {
		b.WriteString(styles.title.Render(slide.Title))
		b.WriteString("\n")
		if body := m.renderBody(slide); body != "" {
			b.WriteString(body)
			b.WriteString("\n")
		}
		b.WriteString(m.renderGroups())
	}

	b.WriteString("\n")
	b.WriteString(m.renderNavBar())

	if m.Exporting() {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(m.exportStatus()))
	}
	if m.notice.text != "" {
		b.WriteString("\n")
		style := styles.toast.Foreground(styles.ok.GetForeground())
		if m.notice.err {
			style = styles.toast.Foreground(styles.err.GetForeground())
		}
		b.WriteString(style.Render(m.notice.text))
	}
	if m.confirming {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render("Leave the presentation? (y/n)"))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) activeSlide() int {
	for n, on := range m.active {
		if on {
			return n
		}
	}
	return 0
}

func (m *Model) exportStatus() string {
	if m.progress.Message == "" {
		return "Preparing export..."
	}
	return m.progress.Message
}

func (m *Model) renderBody(s models.Slide) string {
	if strings.TrimSpace(s.Body) == "" {
		return ""
	}
	if out, ok := m.bodies[s.Ordinal]; ok {
		return out
	}

	if m.markdown == nil {
		r, err := newMarkdownRenderer(m.cfg.Deck.Style, m.width)
		if err != nil {
			m.logger.Warn("failed to create markdown renderer", "error", err)
			return s.Body
		}
		m.markdown = r
	}

	out, err := m.markdown.Render(s.Body)
	if err != nil {
		m.logger.Warn("failed to render slide body", "slide", s.Ordinal, "error", err)
		return s.Body
	}
	out = strings.Trim(out, "\n")
	m.bodies[s.Ordinal] = out
	return out
}

func newMarkdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	wrap := max(width-4, 20)
	switch style {
	case "", "auto":
		return glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
	default:
		return glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(wrap))
	}
}

// renderGroups draws each animated element at its current pose.
func (m *Model) renderGroups() string {
	var b strings.Builder
	cardWidth := max(m.width-8, 24)

	for _, g := range m.trigger.Groups() {
		if g.Title != "" {
			b.WriteString(styles.ok.Render(g.Title))
			b.WriteString("\n")
		}
		for i, e := range g.Elements {
			b.WriteString(renderElement(i, e, cardWidth))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderElement(i int, e anim.Element, cardWidth int) string {
	dx, dy := e.Offset()
	label := e.Text
	if e.Kind == models.GroupTimeline {
		label = fmt.Sprintf("%d. %s", i+1, e.Text)
	}

	var body string
	switch {
	case !e.Visible():
		body = ""
	case e.Kind == models.GroupScale:
		body = styles.card.Width(int(float64(cardWidth) * e.Scale())).Render(label)
	case e.Progress < 0.5:
		body = lipgloss.NewStyle().Faint(true).Render("• " + label)
	default:
		body = "• " + label
	}

	indent := strings.Repeat(" ", anim.TimelineOffset+dx)
	lines := strings.Split(body, "\n")
	for j := range lines {
		lines[j] = indent + lines[j]
	}
	out := strings.Join(lines, "\n")

	// Component items keep a constant height while rising into place.
	if e.Kind == models.GroupComponent {
		out = strings.Repeat("\n", dy) + out + strings.Repeat("\n", anim.ComponentOffset-dy)
	}
	return out
}

func (m *Model) renderNavBar() string {
	prev := styles.dotOff.Render("‹")
	if m.prevOK {
		prev = styles.dotOn.Render("‹")
	}
	next := styles.dotOff.Render("›")
	if m.nextOK {
		next = styles.dotOn.Render("›")
	}

	dots := make([]string, len(m.dots))
	for i, lit := range m.dots {
		if lit {
			dots[i] = styles.dotOn.Render("●")
		} else {
			dots[i] = styles.dotOff.Render("○")
		}
	}

	counter := fmt.Sprintf("%d / %d", m.counter, len(m.dots))
	return lipgloss.JoinHorizontal(lipgloss.Center, prev, " ", strings.Join(dots, " "), " ", next, "   ", counter)
}
