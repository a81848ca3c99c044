package nav

// Action is what an input event asks the presenter to do.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrevious
	ActionGoTo
	ActionFirst
	ActionLast
	ActionFullscreen
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPrevious:
		return "previous"
	case ActionGoTo:
		return "goto"
	case ActionFirst:
		return "first"
	case ActionLast:
		return "last"
	case ActionFullscreen:
		return "fullscreen"
	default:
		return "none"
	}
}

// Intent is an [Action] with its target ordinal for [ActionGoTo].
type Intent struct {
	Action Action
	Target int
}

// DefaultSwipeThreshold is the minimum horizontal travel counted as a swipe.
const DefaultSwipeThreshold = 50

// KeyIntent maps a key name (as reported by bubbletea's KeyMsg.String) to an [Intent].
//
// Digits 1-9 jump to that slide and 0 jumps to slide 10. Unknown keys map to [ActionNone].
func KeyIntent(key string) Intent {
	switch key {
	case "right", " ", "l", "pgdown":
		return Intent{Action: ActionNext}
	case "left", "h", "pgup":
		return Intent{Action: ActionPrevious}
	case "home":
		return Intent{Action: ActionFirst}
	case "end":
		return Intent{Action: ActionLast}
	case "f", "F":
		return Intent{Action: ActionFullscreen}
	case "0":
		return Intent{Action: ActionGoTo, Target: 10}
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return Intent{Action: ActionGoTo, Target: int(key[0] - '0')}
	}

	return Intent{}
}

// Swipe turns a horizontal drag into next/previous.
type Swipe struct {
	Threshold int
	startX    int
	tracking  bool
}

// NewSwipe creates a detector; a non-positive threshold uses [DefaultSwipeThreshold].
func NewSwipe(threshold int) *Swipe {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &Swipe{Threshold: threshold}
}

// Begin records where the drag started.
func (s *Swipe) Begin(x int) {
	s.startX = x
	s.tracking = true
}

// Tracking reports whether a drag is in progress.
func (s *Swipe) Tracking() bool {
	return s.tracking
}

// End finishes the drag at x.
//
// Travelling left beyond the threshold means next, right beyond it means previous, anything shorter is ignored.
func (s *Swipe) End(x int) Intent {
	if !s.tracking {
		return Intent{}
	}
	s.tracking = false

	switch {
	case x < s.startX-s.Threshold:
		return Intent{Action: ActionNext}
	case x > s.startX+s.Threshold:
		return Intent{Action: ActionPrevious}
	}
	return Intent{}
}

// Cancel drops a drag in progress.
func (s *Swipe) Cancel() {
	s.tracking = false
}
