package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/shared"
)

const sessionColumns = `id, sequence, deck_title, start_slide, last_slide, visited, started_at, ended_at, deleted_at`

// SessionRepository persists [models.Session] records with soft delete support.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session with generated ID and sequence
func (r *SessionRepository) Create(s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO sessions (id, sequence, deck_title, start_slide, last_slide, visited, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		s.DeckTitle(),
		s.StartSlide(),
		s.LastSlide(),
		s.Visited(),
		s.StartedAt(),
		s.EndedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	s.SetID(id)
	s.SetSequence(sequence)
	return nil
}

// Get retrieves a session by ID, excluding soft-deleted sessions
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND deleted_at IS NULL`

	s, err := scanSession(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return s, err
}

// Update writes the position and end time of an existing session
func (r *SessionRepository) Update(s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE sessions
		SET last_slide = ?, visited = ?, ended_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, s.LastSlide(), s.Visited(), s.EndedAt(), s.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return expectRow(result, s.ID())
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(id string) error {
	query := `
		UPDATE sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return expectRow(result, id)
}

// List returns the most recent sessions first. A non-positive limit returns every session.
func (r *SessionRepository) List(limit int) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE deleted_at IS NULL ORDER BY sequence DESC`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

// Purge soft-deletes every session.
func (r *SessionRepository) Purge() (int64, error) {
	result, err := r.db.Exec(`UPDATE sessions SET deleted_at = ? WHERE deleted_at IS NULL`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrSessionNotFound, id)
	}
	return nil
}

// scanSession scans a single row into a [models.Session]
func scanSession(row scanner) (*models.Session, error) {
	var (
		id        string
		sequence  int
		deckTitle string
		start     int
		last      int
		visited   int
		startedAt time.Time
		endedAt   sql.NullTime
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &deckTitle, &start, &last, &visited, &startedAt, &endedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	var ended, deleted *time.Time
	if endedAt.Valid {
		ended = &endedAt.Time
	}
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreSession(id, sequence, deckTitle, start, last, visited, startedAt, ended, deleted), nil
}
