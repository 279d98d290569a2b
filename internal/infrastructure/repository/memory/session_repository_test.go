package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grse/dashboard/internal/domain"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	session := domain.NewSession(domain.User{ID: 1, Username: "asha"}, time.Hour)

	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	got.CurrentPage = domain.PageAdmin

	stored, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PageHome, stored.CurrentPage, "callers hold copies")

	require.NoError(t, repo.Update(ctx, got))
	stored, err = repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PageAdmin, stored.CurrentPage)

	require.NoError(t, repo.Delete(ctx, session.ID))
	_, err = repo.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Update(ctx, got), domain.ErrSessionNotFound)
}

func TestExpiredSessionsAreNotReturned(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	session := domain.NewSession(domain.User{ID: 1}, time.Minute)
	require.NoError(t, repo.Create(ctx, session))

	repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err := repo.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, repo.Count())
}
