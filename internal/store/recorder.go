package store

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
)

var _ nav.Listener = (*SessionRecorder)(nil)

// SessionRecorder follows activations into an open [models.Session].
//
// Visits are kept in memory; the row is written when the session opens and again on [SessionRecorder.Close].
type SessionRecorder struct {
	mu      sync.Mutex
	repo    *SessionRepository
	session *models.Session
	logger  *log.Logger
	started bool
}

// NewSessionRecorder creates a recorder for a session of deckTitle. Nothing is written until the first activation.
func NewSessionRecorder(repo *SessionRepository, deckTitle string, logger *log.Logger) *SessionRecorder {
	return &SessionRecorder{repo: repo, session: models.NewSession(deckTitle, 1), logger: logger}
}

// Activated implements [nav.Listener]. The first call opens the session at n.
func (r *SessionRecorder) Activated(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		r.session.Visit(n)
		return
	}

	r.started = true
	r.session = models.NewSession(r.session.DeckTitle(), n)
	if err := r.repo.Create(r.session); err != nil && r.logger != nil {
		r.logger.Warn("failed to record session", "error", err)
	}
}

// Session returns the tracked session.
func (r *SessionRecorder) Session() *models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Close ends the session at now and writes it. Closing an unopened recorder does nothing.
func (r *SessionRecorder) Close(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.session.ID() == "" || r.session.IsEnded() {
		return nil
	}
	r.session.End(now)
	return r.repo.Update(r.session)
}
