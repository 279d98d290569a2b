package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by repositories for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// WhatIfSelection is the active project and scenario on the What-If page
type WhatIfSelection struct {
	ProjectID ProjectID  `json:"project_id,omitempty"`
	Scenario  ScenarioID `json:"scenario"`
}

// Session is the explicit per-login context threaded through the view router.
// Only the session gate writes User; the router writes navigation state.
type Session struct {
	ID          uuid.UUID       `json:"id"`
	User        User            `json:"user"`
	CurrentPage PageID          `json:"current_page"`
	WhatIf      WhatIfSelection `json:"what_if"`
	IssuedAt    time.Time       `json:"issued_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// NewSession opens a session on the home page
func NewSession(user User, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          uuid.New(),
		User:        user,
		CurrentPage: PageHome,
		WhatIf:      WhatIfSelection{Scenario: ScenarioOriginal},
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

// Expired reports whether the session is past its lifetime at t
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime at t, never negative
func (s *Session) TTL(t time.Time) time.Duration {
	d := s.ExpiresAt.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

// SessionRepository persists sessions
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}
