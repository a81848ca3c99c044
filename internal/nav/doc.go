// Package nav owns the presenter's slide index.
//
// A [Controller] holds the single mutable [State] and keeps the invariant that exactly one slide is active and that
// its ordinal equals State.Current. Every transition runs the same sequence:
//
//  1. [Renderer.Deactivate] clears active status from all slides
//  2. [Renderer.Render] marks the target slide active
//  3. [Renderer.RenderHighlight] recomputes prev/next enablement, dots and the counter from State
//  4. each [Listener] is told which slide became active (animation trigger first)
//
// Invalid input is absorbed: Next at the last slide, Previous at the first and GoTo outside [1, N] leave the state
// untouched and render nothing.
//
// Input mapping lives in [KeyIntent] and [Swipe]; both produce an [Intent] the controller applies.
//
// [Controller.Suspend] puts the controller in export mode. Input is ignored until the returned release function runs,
// which restores the snapshotted slide exactly once.
//
// The controller is not safe for concurrent use; the presenter drives it from its update loop.
package nav
