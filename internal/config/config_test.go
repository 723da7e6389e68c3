package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Roulette.GameDurationSeconds)
	assert.Equal(t, 400, cfg.Roulette.HistoryCapacity)
	assert.Equal(t, int64(1000), cfg.Roulette.StartingBalance)
	assert.Equal(t, "postgres", cfg.Storage.SnapshotDriver)
	assert.Equal(t, 5*time.Minute, cfg.Storage.AutosaveInterval)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
bot:
  token: file-token
admin:
  ids: [42]
roulette:
  game_duration_seconds: 20
  duration_overrides:
    "-100": "30"
kafka:
  brokers: ["localhost:9092"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(43))
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Roulette.GameDuration(-100))
	assert.Equal(t, 20*time.Second, cfg.Roulette.GameDuration(1))
}

func TestRouletteConfig_GameDuration(t *testing.T) {
	r := RouletteConfig{
		GameDurationSeconds: 15,
		DurationOverrides: map[string]string{
			"1": "45",
			"2": "0",
			"3": "1.5",
			"4": "abc",
			"5": "-3",
		},
	}

	tests := []struct {
		chat int64
		want time.Duration
	}{
		{1, 45 * time.Second},
		{2, 15 * time.Second},
		{3, 15 * time.Second},
		{4, 15 * time.Second},
		{5, 15 * time.Second},
		{6, 15 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.GameDuration(tt.chat), "chat %d", tt.chat)
	}

	assert.Equal(t, 15*time.Second, (&RouletteConfig{}).GameDuration(1))
}

func TestIsChatAllowed(t *testing.T) {
	open := &Config{}
	assert.True(t, open.IsChatAllowed(123))

	restricted := &Config{Whitelist: WhitelistConfig{Chats: []int64{-100}}}
	assert.True(t, restricted.IsChatAllowed(-100))
	assert.False(t, restricted.IsChatAllowed(123))
}
