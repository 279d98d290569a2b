package main

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend/backendtest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	srv := backendtest.New(t)

	out, err := run(t, "status", "--backend-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Connected to the API and ready to serve data.\n", out)

	_, err = run(t, "status", "--backend-url", "http://127.0.0.1:1")
	var connErr *domain.ConnectivityError
	assert.ErrorAs(t, err, &connErr)
}

func TestPagesCommand(t *testing.T) {
	srv := backendtest.New(t)
	login := []string{"--backend-url", srv.URL, "-u", backendtest.ViewerUsername, "-p", backendtest.ViewerPassword}

	out, err := run(t, append([]string{"pages"}, login...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "home")
	assert.Contains(t, out, "Projects")
	assert.NotContains(t, out, "admin")

	out, err = run(t, append([]string{"pages", "projects"}, login...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Frigate Modernization")
	assert.Contains(t, out, "8/10")

	out, err = run(t, append([]string{"pages", "admin"}, login...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Access Denied")

	_, err = run(t, "pages", "--backend-url", srv.URL, "-u", backendtest.ViewerUsername, "-p", "wrong")
	var authErr *domain.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestWhatIfCommand(t *testing.T) {
	srv := backendtest.New(t)

	out, err := run(t, "whatif", "--backend-url", srv.URL, "-u", backendtest.AdminUsername, "-p", backendtest.AdminPassword,
		"--project", "P002", "--scenario", "scenario1")
	require.NoError(t, err)
	assert.Contains(t, out, "Offshore Patrol Vessel (P002)")
	assert.Contains(t, out, "+46 days")
	assert.Contains(t, out, "2026-02-15")
}

func TestUsersCommands(t *testing.T) {
	srv := backendtest.New(t)
	admin := []string{"--backend-url", srv.URL, "-u", backendtest.AdminUsername, "-p", backendtest.AdminPassword}

	out, err := run(t, append([]string{"users"}, admin...)...)
	require.NoError(t, err)
	assert.Contains(t, out, backendtest.ViewerUsername)

	out, err = run(t, append([]string{"users", "add", "--name", "Lata", "--login", "lata", "--role", "Viewer",
		"--user-password", "lata-pass", "--permissions", "home,financials"}, admin...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "home,financials")

	lata, ok := srv.UserByUsername("lata")
	require.True(t, ok)

	_, err = run(t, append([]string{"users", "delete", strconv.FormatInt(lata.ID, 10)}, admin...)...)
	require.NoError(t, err)
	_, ok = srv.UserByUsername("lata")
	assert.False(t, ok)

	_, err = run(t, "users", "add", "--backend-url", srv.URL, "-u", backendtest.ViewerUsername, "-p", backendtest.ViewerPassword,
		"--name", "X", "--login", "x", "--role", "Viewer", "--user-password", "x")
	assert.Error(t, err)
}
