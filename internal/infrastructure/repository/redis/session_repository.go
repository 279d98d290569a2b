package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/grse/dashboard/internal/domain"
)

// SessionRepository stores sessions as JSON strings expiring with the session
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository creates a Redis-backed session repository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client, prefix: "grse:dashboard:session:"}
}

func (r *SessionRepository) key(id uuid.UUID) string {
	return r.prefix + id.String()
}

func (r *SessionRepository) encode(session *domain.Session) ([]byte, time.Duration, error) {
	ttl := session.TTL(time.Now())
	if ttl <= 0 {
		return nil, 0, domain.ErrSessionNotFound
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal session: %w", err)
	}
	return payload, ttl, nil
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	payload, ttl, err := r.encode(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(session.ID), payload, ttl).Err()
}

// GetByID loads a session; expired keys are already gone
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(result, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Update overwrites an existing session only
func (r *SessionRepository) Update(ctx context.Context, session *domain.Session) error {
	payload, ttl, err := r.encode(session)
	if err != nil {
		return err
	}
	stored, err := r.client.SetXX(ctx, r.key(session.ID), payload, ttl).Result()
	if err != nil {
		return err
	}
	if !stored {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
