// Package ui implements the slide presenter using bubbletea's Elm architecture.
//
// The [Model] is the display port ([nav.Renderer]) of a [nav.Controller]: the controller owns the current slide
// and the model keeps the view state it is told to show (active slide, dots, counter, prev/next enablement).
// Staggered entrance animations come from an [anim.Trigger]; each reveal step becomes a tea.Tick carrying the
// activation epoch so late ticks from an earlier slide are ignored.
//
// Export mode suspends the controller, waits briefly so the notice is visible, runs the exporter in a command and
// releases navigation on completion or after a fallback timeout, whichever comes first.
//
// Keyboard navigation: arrows, space, h/l, page up/down, digits (0 is slide 10), home/end. Mouse drags act as
// swipes. f toggles fullscreen, p exports, ? expands help, q quits (with confirmation mid-deck).
package ui
