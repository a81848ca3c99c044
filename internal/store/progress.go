package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
)

var _ nav.ProgressStore = (*ProgressRepository)(nil)

// ProgressRepository stores the saved slide ordinal per key.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository with the given database connection
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Load returns the ordinal saved under key, or [shared.ErrProgressNotFound].
func (r *ProgressRepository) Load(ctx context.Context, key string) (int, error) {
	p, err := r.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return p.Slide, nil
}

// Save writes slide under key, replacing any previous value.
func (r *ProgressRepository) Save(ctx context.Context, key string, slide int) error {
	if key == "" {
		return fmt.Errorf("%w: progress key is required", shared.ErrInvalidInput)
	}
	if slide < 1 {
		return fmt.Errorf("%w: slide %d", shared.ErrInvalidInput, slide)
	}

	query := `
		INSERT INTO progress (key, slide, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET slide = excluded.slide, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, slide, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Get returns the full progress row for key.
func (r *ProgressRepository) Get(ctx context.Context, key string) (*models.Progress, error) {
	query := `SELECT key, slide, updated_at FROM progress WHERE key = ?`

	var p models.Progress
	err := r.db.QueryRowContext(ctx, query, key).Scan(&p.Key, &p.Slide, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrProgressNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return &p, nil
}

// Reset removes the value saved under key. Resetting a missing key is not an error.
func (r *ProgressRepository) Reset(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM progress WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
