package models

import (
	"fmt"
	"time"
)

var _ Model = (*Session)(nil)

// Progress is the saved slide ordinal stored under Key.
type Progress struct {
	Key       string    `json:"key"`
	Slide     int       `json:"slide"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session records one run of the presenter.
type Session struct {
	id         string
	sequence   int
	deckTitle  string
	startSlide int
	lastSlide  int
	visited    int
	startedAt  time.Time
	endedAt    *time.Time
	deletedAt  *time.Time
}

// NewSession creates an unsaved session starting at slide start.
func NewSession(deckTitle string, start int) *Session {
	return &Session{
		deckTitle:  deckTitle,
		startSlide: start,
		lastSlide:  start,
		visited:    1,
		startedAt:  time.Now().UTC(),
	}
}

// RestoreSession rebuilds a session from stored columns.
func RestoreSession(id string, sequence int, deckTitle string, start, last, visited int, startedAt time.Time, endedAt, deletedAt *time.Time) *Session {
	return &Session{
		id:         id,
		sequence:   sequence,
		deckTitle:  deckTitle,
		startSlide: start,
		lastSlide:  last,
		visited:    visited,
		startedAt:  startedAt,
		endedAt:    endedAt,
		deletedAt:  deletedAt,
	}
}

func (s *Session) ID() string               { return s.id }
func (s *Session) SetID(id string)          { s.id = id }
func (s *Session) Sequence() int            { return s.sequence }
func (s *Session) SetSequence(n int)        { s.sequence = n }
func (s *Session) DeckTitle() string        { return s.deckTitle }
func (s *Session) StartSlide() int          { return s.startSlide }
func (s *Session) LastSlide() int           { return s.lastSlide }
func (s *Session) Visited() int             { return s.visited }
func (s *Session) StartedAt() time.Time     { return s.startedAt }
func (s *Session) EndedAt() *time.Time      { return s.endedAt }
func (s *Session) DeletedAt() *time.Time    { return s.deletedAt }
func (s *Session) CreatedAt() time.Time     { return s.startedAt }
func (s *Session) IsEnded() bool            { return s.endedAt != nil }
func (s *Session) SetDeletedAt(t time.Time) { s.deletedAt = &t }

// UpdatedAt returns the end time for closed sessions and the start time otherwise.
func (s *Session) UpdatedAt() time.Time {
	if s.endedAt != nil {
		return *s.endedAt
	}
	return s.startedAt
}

// Visit records an activation of slide n.
func (s *Session) Visit(n int) {
	s.lastSlide = n
	s.visited++
}

// End closes the session at the given time.
func (s *Session) End(at time.Time) {
	at = at.UTC()
	s.endedAt = &at
}

// Duration returns how long the session ran; open sessions measure up to now.
func (s *Session) Duration() time.Duration {
	if s.endedAt != nil {
		return s.endedAt.Sub(s.startedAt)
	}
	return time.Since(s.startedAt)
}

// Validate checks slide ordinals and timestamps.
func (s *Session) Validate() error {
	if s.deckTitle == "" {
		return fmt.Errorf("deck title is required")
	}
	if s.startSlide < 1 || s.lastSlide < 1 {
		return fmt.Errorf("slide ordinals must be positive")
	}
	if s.endedAt != nil && s.endedAt.Before(s.startedAt) {
		return fmt.Errorf("session ends before it starts")
	}
	return nil
}
