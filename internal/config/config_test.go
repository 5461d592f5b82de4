package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DISCORD_TOKEN", "COMMANDLESS_API_KEY", "COMMANDLESS_BOT_ID", "RELAY_BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bot":{"token":"tok","bot_id":"42"}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Bot.Token)
	assert.Equal(t, "42", cfg.Bot.BotID)
	assert.Equal(t, "https://api.commandless.app", cfg.Relay.BaseURL)
	assert.Equal(t, 30000, cfg.Relay.PollIntervalMs)
	assert.Equal(t, 600000, cfg.Relay.CleanupIntervalMs)
	assert.Equal(t, 4, cfg.Network.HTTPPoolSize)
	assert.False(t, cfg.Relay.FailClosed)
	assert.False(t, cfg.Storage.PersistWindows)
}

func TestLoadRespectsExplicitValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"relay": {"base_url": "http://localhost:9000", "poll_interval_ms": 5000, "fail_closed": true},
		"storage": {"persist_windows": true, "path": "windows.db"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Relay.BaseURL)
	assert.Equal(t, 5000, cfg.Relay.PollIntervalMs)
	assert.True(t, cfg.Relay.FailClosed)
	assert.True(t, cfg.Storage.PersistWindows)
	assert.Equal(t, "windows.db", cfg.Storage.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("COMMANDLESS_API_KEY", "env-key")
	t.Setenv("COMMANDLESS_BOT_ID", "env-bot")
	t.Setenv("RELAY_BASE_URL", "http://env.example")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bot":{"token":"file-token"}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "env-key", cfg.Relay.APIKey)
	assert.Equal(t, "env-bot", cfg.Bot.BotID)
	assert.Equal(t, "http://env.example", cfg.Relay.BaseURL)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, "https://api.commandless.app", cfg.Relay.BaseURL)
	assert.Equal(t, 30000, cfg.Relay.PollIntervalMs)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
