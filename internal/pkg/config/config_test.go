package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Zero(t, cfg.Backend.Timeout())
	assert.Equal(t, SessionDriverMemory, cfg.Session.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Session.SessionTTL())
	assert.Equal(t, "grse_session", cfg.Session.CookieName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BACKEND_BASE_URL", "http://backend.internal:5000")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "15")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, SessionDriverRedis, cfg.Session.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SESSION_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown session driver")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", db.DSN())
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+)
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
