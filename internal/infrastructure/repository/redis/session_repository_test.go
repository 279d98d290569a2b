package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grse/dashboard/internal/domain"
)

func newRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client), mr
}

func testSession() *domain.Session {
	user := domain.User{ID: 3, Name: "Asha", Username: "asha", Role: "Admin", Permissions: domain.NewPageSet(domain.AllPages()...)}
	return domain.NewSession(user, time.Hour)
}

func TestSessionRoundTrip(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	session := testSession()

	require.NoError(t, repo.Create(ctx, session))
	assert.True(t, mr.Exists("grse:dashboard:session:"+session.ID.String()))

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.User, got.User)
	assert.Equal(t, domain.ScenarioOriginal, got.WhatIf.Scenario)

	got.CurrentPage = domain.PageWhatIf
	got.WhatIf = domain.WhatIfSelection{ProjectID: "P002", Scenario: domain.ScenarioScenario2}
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PageWhatIf, again.CurrentPage)
	assert.Equal(t, domain.ProjectID("P002"), again.WhatIf.ProjectID)
}

func TestSessionExpiresWithTTL(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	session := testSession()
	require.NoError(t, repo.Create(ctx, session))

	mr.FastForward(2 * time.Hour)

	_, err := repo.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUpdateMissingSession(t *testing.T) {
	repo, _ := newRepo(t)
	err := repo.Update(context.Background(), testSession())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	session := testSession()
	require.NoError(t, repo.Create(ctx, session))

	require.NoError(t, repo.Delete(ctx, session.ID))
	_, err := repo.GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
