// Package anim schedules the staggered entrance of a slide's content groups.
//
// The [Trigger] is a [nav.Listener]: every activation bumps an epoch, resets every element to its hidden
// starting pose and queues one [Step] per element. The presenter turns steps into timer ticks and hands them
// back through [Trigger.Reveal]; steps minted under an older epoch are dropped, so rapid navigation never
// reveals content on a slide that is no longer current.
//
// Elements animate for a fixed transition with an ease-out curve. [Trigger.Advance] moves every in-flight
// element forward and reports whether another frame is needed.
package anim
