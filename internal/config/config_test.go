package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "discord:\n  token: abc\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "abc", cfg.Discord.Token)
	assert.Equal(t, 10*time.Second, cfg.Discord.RequestTimeout)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "{user}'s room", cfg.Rooms.NameTemplate)
	assert.Equal(t, 100, cfg.Rooms.MaxNameLength)
	assert.Equal(t, 99, cfg.Rooms.MaxUserLimit)
	assert.False(t, cfg.Rooms.ClaimRequiresOfflineOwner)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
	assert.Equal(t, time.Minute, cfg.Sweeper.EmptyGrace)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
env: prod
discord:
  token: from-file
  request_timeout: 3s
rooms:
  max_user_limit: 25
  claim_requires_offline_owner: true
sweeper:
  interval: 30s
`)
	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("DATABASE_DSN", "postgres://localhost/tempvoice")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "from-env", cfg.Discord.Token)
	assert.Equal(t, 3*time.Second, cfg.Discord.RequestTimeout)
	assert.Equal(t, 25, cfg.Rooms.MaxUserLimit)
	assert.True(t, cfg.Rooms.ClaimRequiresOfflineOwner)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, "postgres://localhost/tempvoice", cfg.Database.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	require.NoError(t, os.Unsetenv("DISCORD_TOKEN"))

	tcases := []struct {
		name string
		body string
	}{
		{"missing token", "env: local\n"},
		{"limit too high", "discord:\n  token: abc\nrooms:\n  max_user_limit: 150\n"},
		{"name too long", "discord:\n  token: abc\nrooms:\n  max_name_length: 200\n"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
