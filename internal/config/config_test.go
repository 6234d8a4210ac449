package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "test-token")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeStandalone, cfg.App.Mode)
	assert.Equal(t, "market-ticket-bot", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 60*time.Second, cfg.Tickets.ConfirmTTL())
	assert.Equal(t, 3*time.Second, cfg.Tickets.ConfirmCloseDelay())
	assert.Equal(t, 5*time.Second, cfg.Tickets.DirectCloseDelay())
	assert.Equal(t, "tickets", cfg.Watcher.Dir)
	assert.Equal(t, 5*time.Second, cfg.Watcher.Interval())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadRequiresBotToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEPLOY_MODE", "cluster")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEPLOY_MODE")
}

func TestLoadRelayMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEPLOY_MODE", "RELAY")
	t.Setenv("TICKETS_DIR", "/var/tickets")
	t.Setenv("POLL_INTERVAL_SECONDS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeRelay, cfg.App.Mode)
	assert.Equal(t, "/var/tickets", cfg.Watcher.Dir)
	assert.Equal(t, 2*time.Second, cfg.Watcher.Interval())
}

func TestLoadPolicy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_OWNER_ID", "owner-1")
	t.Setenv("ALLOWED_USER_IDS", "user-1, user-2,,user-3")
	t.Setenv("ALLOWED_ROLE_IDS", "role-1")

	cfg, err := Load()
	require.NoError(t, err)

	policy := cfg.Discord.Policy()
	assert.Equal(t, "owner-1", policy.OwnerID)
	assert.Equal(t, []string{"user-1", "user-2", "user-3"}, policy.AllowedUserIDs)
	assert.Equal(t, []string{"role-1"}, policy.AllowedRoleIDs)
}

func TestSplitIDList(t *testing.T) {
	assert.Nil(t, splitIDList(""))
	assert.Nil(t, splitIDList("   "))
	assert.Equal(t, []string{"a"}, splitIDList("a"))
	assert.Equal(t, []string{"a", "b"}, splitIDList(" a , b "))
	assert.Equal(t, []string{"a", "b"}, splitIDList("a,,b,"))
}

func TestWatcherIntervalFloor(t *testing.T) {
	w := WatcherConfig{PollIntervalSeconds: 0}
	assert.Equal(t, 5*time.Second, w.Interval())
}
