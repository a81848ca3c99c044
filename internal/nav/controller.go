package nav

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/deck/internal/shared"
)

// State is the navigation state of a deck with Total slides.
type State struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// HasPrevious reports whether Previous would move.
func (s State) HasPrevious() bool { return s.Current > 1 }

// HasNext reports whether Next would move.
func (s State) HasNext() bool { return s.Current < s.Total }

// Contains reports whether n is a valid ordinal.
func (s State) Contains(n int) bool { return n >= 1 && n <= s.Total }

// Renderer is the display port driven by the [Controller].
type Renderer interface {
	Deactivate()             // clears active status from every slide
	Render(s State)          // marks slide s.Current active
	RenderHighlight(s State) // recomputes prev/next, dots and counter from s
}

// Listener is notified after a slide has been activated and the display refreshed.
type Listener interface {
	Activated(n int)
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(n int)

func (f ListenerFunc) Activated(n int) { f(n) }

// ProgressStore persists the current ordinal between runs.
//
// Load returns [shared.ErrProgressNotFound] when nothing was saved under key.
type ProgressStore interface {
	Load(ctx context.Context, key string) (int, error)
	Save(ctx context.Context, key string, slide int) error
}

// Controller maintains the current slide index. See the package documentation for the transition contract.
type Controller struct {
	state     State
	renderer  Renderer
	listeners []Listener
	suspended bool
}

// New creates a controller for total slides positioned at slide 1.
//
// Nothing is rendered until [Controller.Start] or [Controller.Restore].
func New(total int, r Renderer, listeners ...Listener) *Controller {
	if total < 1 {
		total = 1
	}
	if r == nil {
		r = nopRenderer{}
	}
	return &Controller{
		state:     State{Current: 1, Total: total},
		renderer:  r,
		listeners: listeners,
	}
}

// Listen appends a listener; listeners run in registration order.
func (c *Controller) Listen(l Listener) {
	c.listeners = append(c.listeners, l)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Suspended reports whether export mode is active.
func (c *Controller) Suspended() bool {
	return c.suspended
}

// Start activates initial, or slide 1 when initial is out of range.
func (c *Controller) Start(initial int) {
	if !c.state.Contains(initial) {
		initial = 1
	}
	c.Activate(initial)
}

// Restore starts at the slide saved under key.
//
// Missing or out-of-range values start at slide 1. Store failures also start at slide 1 and are returned.
func (c *Controller) Restore(ctx context.Context, store ProgressStore, key string) error {
	if store == nil {
		c.Start(1)
		return nil
	}

	saved, err := store.Load(ctx, key)
	if err != nil {
		c.Start(1)
		if errors.Is(err, shared.ErrProgressNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load progress: %w", err)
	}

	c.Start(saved)
	return nil
}

// Persist saves the current ordinal under key.
func (c *Controller) Persist(ctx context.Context, store ProgressStore, key string) error {
	if store == nil {
		return nil
	}
	if err := store.Save(ctx, key, c.state.Current); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Next moves forward one slide unless already at the last.
func (c *Controller) Next() bool {
	if c.suspended || !c.state.HasNext() {
		return false
	}
	c.Activate(c.state.Current + 1)
	return true
}

// Previous moves back one slide unless already at the first.
func (c *Controller) Previous() bool {
	if c.suspended || !c.state.HasPrevious() {
		return false
	}
	c.Activate(c.state.Current - 1)
	return true
}

// GoTo jumps to slide n when n is in range.
func (c *Controller) GoTo(n int) bool {
	if c.suspended || !c.state.Contains(n) {
		return false
	}
	c.Activate(n)
	return true
}

// Apply performs the transition an [Intent] asks for.
//
// Intents without a navigation action report false.
func (c *Controller) Apply(in Intent) bool {
	switch in.Action {
	case ActionNext:
		return c.Next()
	case ActionPrevious:
		return c.Previous()
	case ActionGoTo:
		return c.GoTo(in.Target)
	case ActionFirst:
		return c.GoTo(1)
	case ActionLast:
		return c.GoTo(c.state.Total)
	}
	return false
}

// Activate makes slide n the only active slide and notifies listeners.
//
// Re-activating the current slide re-renders it and restarts its animations. Out-of-range n is ignored.
func (c *Controller) Activate(n int) {
	if !c.state.Contains(n) {
		return
	}

	c.state.Current = n

	c.renderer.Deactivate()
	c.renderer.Render(c.state)
	c.renderer.RenderHighlight(c.state)

	for _, l := range c.listeners {
		l.Activated(n)
	}
}

// Resize changes the slide count, clamping and re-activating the current slide.
//
// While suspended the clamped slide is redrawn but listeners are not notified.
func (c *Controller) Resize(total int) {
	if total < 1 {
		total = 1
	}
	c.state.Total = total
	if c.state.Current > total {
		c.state.Current = total
	}
	if !c.suspended {
		c.Activate(c.state.Current)
		return
	}
	c.renderer.Deactivate()
	c.renderer.Render(c.state)
	c.renderer.RenderHighlight(c.state)
}

// Suspend enters export mode and returns the function that leaves it.
//
// While suspended every navigation call is a no-op. The release function restores and re-activates the slide that
// was current when Suspend was called; calling it again does nothing.
func (c *Controller) Suspend() (release func(), err error) {
	if c.suspended {
		return nil, shared.ErrExportInProgress
	}

	c.suspended = true
	snapshot := c.state.Current
	released := false

	return func() {
		if released {
			return
		}
		released = true
		c.suspended = false
		if !c.state.Contains(snapshot) {
			snapshot = c.state.Current
		}
		c.Activate(snapshot)
	}, nil
}

type nopRenderer struct{}

func (nopRenderer) Deactivate()           {}
func (nopRenderer) Render(State)          {}
func (nopRenderer) RenderHighlight(State) {}
