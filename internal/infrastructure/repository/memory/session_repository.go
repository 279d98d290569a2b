package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grse/dashboard/internal/domain"
)

// SessionRepository keeps sessions in process memory
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
	now      func() time.Time
}

// NewSessionRepository creates an empty in-memory session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[uuid.UUID]domain.Session),
		now:      time.Now,
	}
}

// Create stores a copy of the session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

// GetByID returns a copy of a live session
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(r.now()) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Update replaces a live session
func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sessions[session.ID]
	if !ok || existing.Expired(r.now()) {
		return domain.ErrSessionNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Count returns the number of stored sessions, expired ones included
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
