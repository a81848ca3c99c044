package anim

import (
	"math"
	"sync"
	"time"

	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
)

const (
	// TimelineOffset is how many cells left of its resting column a timeline item starts.
	TimelineOffset = 6
	// ComponentOffset is how many rows below its resting row a component item starts.
	ComponentOffset = 1
	// ScaleFrom is the starting width factor of a scale item.
	ScaleFrom = 0.9
)

// Timing holds the reveal schedule.
type Timing struct {
	ResetDelay       time.Duration
	ScaleStagger     time.Duration
	TimelineStagger  time.Duration
	ComponentStagger time.Duration
	Transition       time.Duration
}

// DefaultTiming is the stock schedule: 10ms reset, 100/150/200ms staggers, 600ms transitions.
func DefaultTiming() Timing {
	return Timing{
		ResetDelay:       10 * time.Millisecond,
		ScaleStagger:     100 * time.Millisecond,
		TimelineStagger:  150 * time.Millisecond,
		ComponentStagger: 200 * time.Millisecond,
		Transition:       600 * time.Millisecond,
	}
}

// TimingFromConfig converts the [animation] config section.
func TimingFromConfig(c shared.AnimationConfig) Timing {
	t := Timing{
		ResetDelay:       shared.Millis(c.ResetDelayMS),
		ScaleStagger:     shared.Millis(c.ScaleStaggerMS),
		TimelineStagger:  shared.Millis(c.TimelineStaggerMS),
		ComponentStagger: shared.Millis(c.ComponentStaggerMS),
		Transition:       shared.Millis(c.TransitionMS),
	}
	if t.Transition <= 0 {
		t.Transition = DefaultTiming().Transition
	}
	return t
}

// Stagger returns the per-item delay for kind. Fade groups reveal together.
func (t Timing) Stagger(kind models.GroupKind) time.Duration {
	switch kind {
	case models.GroupScale:
		return t.ScaleStagger
	case models.GroupTimeline:
		return t.TimelineStagger
	case models.GroupComponent:
		return t.ComponentStagger
	}
	return 0
}

// Step asks for one element to start its entrance after Delay.
type Step struct {
	Epoch uint64
	Slide int
	Group int
	Item  int
	Delay time.Duration
}

// Element is one animated item and its current pose.
type Element struct {
	Kind     models.GroupKind
	Text     string
	Progress float64 // eased, 0 hidden .. 1 at rest

	started  time.Time
	revealed bool
}

// Visible reports whether any part of the element should be drawn.
func (e Element) Visible() bool {
	return e.Progress > 0
}

// Settled reports whether the element has finished its entrance.
func (e Element) Settled() bool {
	return e.Progress >= 1
}

// Offset returns the displacement from the resting position in cells (dx) and rows (dy).
func (e Element) Offset() (dx, dy int) {
	rest := 1 - e.Progress
	switch e.Kind {
	case models.GroupTimeline:
		return -int(math.Round(TimelineOffset * rest)), 0
	case models.GroupComponent:
		return 0, int(math.Ceil(ComponentOffset * rest))
	}
	return 0, 0
}

// Scale returns the width factor for scale items and 1 for every other kind.
func (e Element) Scale() float64 {
	if e.Kind != models.GroupScale {
		return 1
	}
	return ScaleFrom + (1-ScaleFrom)*e.Progress
}

// GroupState is the animated view of one [models.Group].
type GroupState struct {
	Kind     models.GroupKind
	Title    string
	Elements []Element
}

var _ nav.Listener = (*Trigger)(nil)

// Trigger restarts a slide's entrance animation on every activation.
type Trigger struct {
	mu      sync.Mutex
	deck    *models.Deck
	timing  Timing
	epoch   uint64
	slide   int
	groups  []GroupState
	pending []Step
}

// NewTrigger creates a trigger for d.
func NewTrigger(d *models.Deck, timing Timing) *Trigger {
	if timing.Transition <= 0 {
		timing.Transition = DefaultTiming().Transition
	}
	return &Trigger{deck: d, timing: timing}
}

// SetDeck swaps the deck after a reload. The next activation uses it.
func (t *Trigger) SetDeck(d *models.Deck) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deck = d
}

// Activated resets slide n and queues its reveal steps. It implements [nav.Listener].
func (t *Trigger) Activated(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.epoch++
	t.slide = n
	t.groups = nil
	t.pending = nil

	slide, ok := t.deck.Slide(n)
	if !ok {
		return
	}

	for _, g := range slide.Groups {
		if len(g.Items) == 0 {
			continue
		}
		gi := len(t.groups)
		state := GroupState{Kind: g.Kind, Title: g.Title, Elements: make([]Element, len(g.Items))}
		stagger := t.timing.Stagger(g.Kind)
		for i, item := range g.Items {
			state.Elements[i] = Element{Kind: g.Kind, Text: item}
			t.pending = append(t.pending, Step{
				Epoch: t.epoch,
				Slide: n,
				Group: gi,
				Item:  i,
				Delay: t.timing.ResetDelay + time.Duration(i)*stagger,
			})
		}
		t.groups = append(t.groups, state)
	}
}

// Drain returns and clears the steps queued by the last activation.
func (t *Trigger) Drain() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	steps := t.pending
	t.pending = nil
	return steps
}

// Epoch returns the current activation epoch.
func (t *Trigger) Epoch() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// Slide returns the ordinal of the slide being animated.
func (t *Trigger) Slide() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slide
}

// Reveal starts the element named by s at now.
//
// It reports false, changing nothing, when s belongs to an earlier activation.
func (t *Trigger) Reveal(s Step, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.Epoch != t.epoch || s.Slide != t.slide {
		return false
	}
	if s.Group < 0 || s.Group >= len(t.groups) {
		return false
	}
	elems := t.groups[s.Group].Elements
	if s.Item < 0 || s.Item >= len(elems) || elems[s.Item].revealed {
		return false
	}

	elems[s.Item].revealed = true
	elems[s.Item].started = now
	return true
}

// Advance moves every revealed element along its transition and reports whether any is still moving.
func (t *Trigger) Advance(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	moving := false
	for gi := range t.groups {
		elems := t.groups[gi].Elements
		for i := range elems {
			e := &elems[i]
			if !e.revealed || e.Progress >= 1 {
				continue
			}
			e.Progress = EaseOut(float64(now.Sub(e.started)) / float64(t.timing.Transition))
			if e.Progress < 1 {
				moving = true
			}
		}
	}
	return moving
}

// Settle shows every element at rest and drops anything still queued. Used by export mode.
func (t *Trigger) Settle() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.epoch++
	t.pending = nil
	for gi := range t.groups {
		for i := range t.groups[gi].Elements {
			e := &t.groups[gi].Elements[i]
			e.revealed = true
			e.Progress = 1
		}
	}
}

// Groups returns a copy of the animated groups of the current slide.
func (t *Trigger) Groups() []GroupState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]GroupState, len(t.groups))
	for i, g := range t.groups {
		out[i] = GroupState{Kind: g.Kind, Title: g.Title, Elements: append([]Element(nil), g.Elements...)}
	}
	return out
}

// Settled returns every group of slide at rest, for renderers that do not animate.
func Settled(slide models.Slide) []GroupState {
	var out []GroupState
	for _, g := range slide.Groups {
		if len(g.Items) == 0 {
			continue
		}
		state := GroupState{Kind: g.Kind, Title: g.Title, Elements: make([]Element, len(g.Items))}
		for i, item := range g.Items {
			state.Elements[i] = Element{Kind: g.Kind, Text: item, Progress: 1, revealed: true}
		}
		out = append(out, state)
	}
	return out
}

// EaseOut is the cubic ease-out curve clamped to [0, 1].
func EaseOut(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	inv := 1 - x
	return 1 - inv*inv*inv
}
