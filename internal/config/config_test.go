package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebot/internal/config"
)

// setCredentialEnv supplies the required secrets that have no usable
// defaults.
func setCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_MESSENGER_VERIFY_TOKEN", "verify-token")
	t.Setenv("BOT_MESSENGER_APP_SECRET", "app-secret")
	t.Setenv("BOT_MESSENGER_PAGE_TOKEN", "page-token")
	t.Setenv("BOT_MESSENGER_SERVER_URL", "https://bot.example.com")
}

func TestLoadDefaults(t *testing.T) {
	setCredentialEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://graph.facebook.com/v2.6", cfg.Messenger.GraphURL)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.Threshold)
	assert.Equal(t, "storage.db", cfg.Database.Path)

	task, ok := cfg.Scheduler.Tasks["user_reminder"]
	require.True(t, ok)
	assert.True(t, task.Enabled)
	assert.Equal(t, "*/5 * * * *", task.Schedule)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	setCredentialEnv(t)
	t.Setenv("BOT_LOG_LEVEL", "debug")
	t.Setenv("BOT_SERVER_ADDR", ":9999")
	t.Setenv("BOT_REMINDER_THRESHOLD", "48h")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 48*time.Hour, cfg.Reminder.Threshold)
	assert.Equal(t, "verify-token", cfg.Messenger.VerifyToken)
	assert.Equal(t, "page-token", cfg.Messenger.PageToken)
}

func TestLoadConfigFile(t *testing.T) {
	setCredentialEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: warn
  json: false
server:
  addr: ":3000"
database:
  path: /tmp/bot.db
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/bot.db", cfg.Database.Path)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing credentials",
			setup: func(t *testing.T) {
				t.Helper()
				// Only a subset of the required secrets is present.
				t.Setenv("BOT_MESSENGER_VERIFY_TOKEN", "verify-token")
			},
		},
		{
			name: "bad log level",
			setup: func(t *testing.T) {
				t.Helper()
				setCredentialEnv(t)
				t.Setenv("BOT_LOG_LEVEL", "verbose")
			},
		},
		{
			name: "server url must be a url",
			setup: func(t *testing.T) {
				t.Helper()
				setCredentialEnv(t)
				t.Setenv("BOT_MESSENGER_SERVER_URL", "not a url")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setup(t)

			_, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
			require.Error(t, err)
			assert.ErrorContains(t, err, "validation failed")
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	setCredentialEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [not: valid"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}
