package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grse/dashboard/internal/domain"
)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS dashboard_sessions (
		id UUID PRIMARY KEY,
		payload JSONB NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_dashboard_sessions_expires_at ON dashboard_sessions(expires_at);
`

// SessionRepository implements domain.SessionRepository with PostgreSQL
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// EnsureSchema creates the sessions table if it does not exist
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, sessionSchema); err != nil {
		return fmt.Errorf("create session schema: %w", err)
	}
	return nil
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		INSERT INTO dashboard_sessions (id, payload, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`

	_, err = r.db.Exec(ctx, query, session.ID, payload, session.ExpiresAt, session.IssuedAt)
	return err
}

// GetByID retrieves a live session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT payload FROM dashboard_sessions
		WHERE id = $1 AND expires_at > NOW()
	`

	var payload []byte
	err := r.db.QueryRow(ctx, query, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Update replaces a live session's payload
func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		UPDATE dashboard_sessions
		SET payload = $1, updated_at = $2
		WHERE id = $3 AND expires_at > NOW()
	`

	tag, err := r.db.Exec(ctx, query, payload, time.Now(), session.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM dashboard_sessions WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// DeleteExpired purges sessions past their lifetime and reports how many went
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM dashboard_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
