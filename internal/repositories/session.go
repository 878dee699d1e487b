// Package repositories contains local SQLite persistence for the CLI.
//
// The only thing reelist stores locally is the auth session secret, so the
// watchlist itself always comes fresh from the remote store.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vaporisers/reelist/internal/models"
)

// SessionRepository persists the single stored CLI session.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save stores the session, replacing any previously stored one.
func (r *SessionRepository) Save(session models.StoredSession) error {
	if session.UserID == "" || session.Secret == "" {
		return fmt.Errorf("stored session requires user id and secret")
	}

	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sessions (id, user_id, secret, created_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, secret = excluded.secret, created_at = excluded.created_at
	`

	if _, err := r.db.Exec(query, session.UserID, session.Secret, createdAt); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Load returns the stored session, or nil when none is stored.
// An absent session is an expected condition, not an error.
func (r *SessionRepository) Load() (*models.StoredSession, error) {
	query := `SELECT user_id, secret, created_at FROM sessions WHERE id = 1`

	var session models.StoredSession
	err := r.db.QueryRow(query).Scan(&session.UserID, &session.Secret, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stored session: %w", err)
	}

	return &session, nil
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}
