// package models defines the data model for the slide deck presenter
package models

import (
	"fmt"
	"time"
)

// DefaultSlideCount is the cardinality of the built-in deck.
const DefaultSlideCount = 12

// Model defines the base interface for persisted records.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// GroupKind selects how the items of a [Group] enter the screen.
type GroupKind string

const (
	GroupFade      GroupKind = "fade"      // all items fade in together
	GroupScale     GroupKind = "scale"     // cards grow in, staggered
	GroupTimeline  GroupKind = "timeline"  // items slide in from the left, staggered
	GroupComponent GroupKind = "component" // items rise from below, staggered
)

// Valid reports whether k is a known kind.
func (k GroupKind) Valid() bool {
	switch k {
	case GroupFade, GroupScale, GroupTimeline, GroupComponent:
		return true
	}
	return false
}

// Group is an ordered run of items sharing a reveal behaviour.
type Group struct {
	Kind  GroupKind `toml:"kind" json:"kind"`
	Title string    `toml:"title" json:"title,omitempty"`
	Items []string  `toml:"items" json:"items"`
}

// Slide is one page of the deck. Its identity is its 1-based ordinal.
type Slide struct {
	Ordinal int     `toml:"-" json:"ordinal"`
	Title   string  `toml:"title" json:"title"`
	Body    string  `toml:"body" json:"body,omitempty"`
	Notes   string  `toml:"notes" json:"notes,omitempty"`
	Groups  []Group `toml:"groups" json:"groups,omitempty"`
}

// Group returns the first group of the given kind, if any.
func (s Slide) Group(kind GroupKind) (Group, bool) {
	for _, g := range s.Groups {
		if g.Kind == kind {
			return g, true
		}
	}
	return Group{}, false
}

// Deck is an ordered, fixed-length sequence of slides.
type Deck struct {
	Title    string  `toml:"title" json:"title"`
	Subtitle string  `toml:"subtitle" json:"subtitle,omitempty"`
	Author   string  `toml:"author" json:"author,omitempty"`
	Slides   []Slide `toml:"slides" json:"slides"`
}

// Len returns the number of slides (N).
func (d *Deck) Len() int {
	return len(d.Slides)
}

// Slide returns the slide at ordinal n (1-based).
func (d *Deck) Slide(n int) (Slide, bool) {
	if n < 1 || n > len(d.Slides) {
		return Slide{}, false
	}
	return d.Slides[n-1], true
}

// Contains reports whether n is a valid ordinal for this deck.
func (d *Deck) Contains(n int) bool {
	return n >= 1 && n <= len(d.Slides)
}

// Number assigns ordinals from slice position.
func (d *Deck) Number() {
	for i := range d.Slides {
		d.Slides[i].Ordinal = i + 1
	}
}

// Validate checks slide count, titles and group kinds.
func (d *Deck) Validate() error {
	if len(d.Slides) == 0 {
		return fmt.Errorf("deck has no slides")
	}
	if len(d.Slides) > DefaultSlideCount {
		return fmt.Errorf("deck has %d slides, at most %d are supported", len(d.Slides), DefaultSlideCount)
	}
	for i, s := range d.Slides {
		if s.Title == "" {
			return fmt.Errorf("slide %d has no title", i+1)
		}
		for j, g := range s.Groups {
			if !g.Kind.Valid() {
				return fmt.Errorf("slide %d group %d: unknown kind %q", i+1, j+1, g.Kind)
			}
		}
	}
	return nil
}
