package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend"
	"github.com/grse/dashboard/internal/infrastructure/backend/backendtest"
	"github.com/grse/dashboard/internal/infrastructure/repository/memory"
)

const (
	testSecret = "test-session-secret"
	testIssuer = "grse-dashboard-test"
)

type harness struct {
	srv    *backendtest.Server
	client *backend.Client
	repo   *memory.SessionRepository
	gate   *application.SessionGate
	data   *application.DashboardService
	admin  *application.AdminController
	router *application.ViewRouter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := backendtest.New(t)
	client := backend.NewClient(srv.URL, 5*time.Second)
	repo := memory.NewSessionRepository()
	gate := application.NewSessionGate(client, repo, testSecret, testIssuer, time.Hour)
	data := application.NewDashboardService(client, nil)
	admin := application.NewAdminController(client)

	return &harness{
		srv:    srv,
		client: client,
		repo:   repo,
		gate:   gate,
		data:   data,
		admin:  admin,
		router: application.NewViewRouter(gate, data, admin),
	}
}

func (h *harness) login(t *testing.T, username, password string) *domain.Session {
	t.Helper()

	issued, err := h.gate.Login(context.Background(), domain.Credentials{Username: username, Password: password})
	require.NoError(t, err)
	return issued.Session
}
