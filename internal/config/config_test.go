package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jms1308/kitobim/internal/config"
)

// unsetEnv clears keys for the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_DRIVER", "TOKEN_TTL", "JWT_SECRET")
	cfg, err := config.Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://kitob@localhost/kitob")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SECURE_COOKIES", "true")

	cfg, err := config.Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "postgres://kitob@localhost/kitob", cfg.DBDSN)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.SecureCookies)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "firestore")
	_, err := config.Load("testdata/does-not-exist.env")
	assert.Error(t, err)
}
