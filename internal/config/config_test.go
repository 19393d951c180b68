package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvStorageType, "")
	t.Setenv(EnvPort, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, time.Second, cfg.Schedule.Tick)
	assert.Equal(t, 30*time.Second, cfg.Schedule.Persist)
	assert.Equal(t, time.Minute, cfg.Schedule.Leaderboard)
	assert.Equal(t, time.Hour, cfg.Schedule.Cleanup)
	assert.Equal(t, 7*24*time.Hour, cfg.Cleanup.Retention)
	assert.Equal(t, 100.0, cfg.Cleanup.MoneyBelow)
	assert.Equal(t, 10, cfg.Game.LeaderboardSize)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvStorageType, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvSQLitePath, "")

	cfg, err := Load("testdata/server.yaml")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "/tmp/coins.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 0.5, cfg.Game.MaxGoldenClickChance)
	assert.Equal(t, 25, cfg.Game.LeaderboardSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Schedule.Tick)
	assert.Equal(t, 10*time.Second, cfg.Schedule.Persist)
	assert.Equal(t, 72*time.Hour, cfg.Cleanup.Retention)
	assert.Equal(t, 50.0, cfg.Cleanup.MoneyBelow)

	// Untouched keys keep their defaults
	assert.Equal(t, time.Minute, cfg.Schedule.Leaderboard)
	assert.Equal(t, 24*time.Hour, cfg.Game.OfflineCap)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvStorageType: "Redis",
		EnvRedisURL:    "redis://cache:6379/1",
		EnvPort:        "7000",
		EnvLogLevel:    "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Type)
	assert.Equal(t, "redis://cache:6379/1", cfg.Storage.Redis.URL)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ApplyEnv(env(map[string]string{EnvPort: "eighty"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "mongo" }},
		{"redis without url", func(c *Config) { c.Storage.Type = StorageRedis }},
		{"sqlite without path", func(c *Config) { c.Storage.Type = StorageSQLite; c.Storage.SQLite.Path = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"golden chance of one", func(c *Config) { c.Game.MaxGoldenClickChance = 1 }},
		{"zero tick", func(c *Config) { c.Schedule.Tick = 0 }},
		{"zero retention", func(c *Config) { c.Cleanup.Retention = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{Schedule: ScheduleConfig{Tick: 5 * time.Millisecond}}.WithDefaults()

	assert.Equal(t, 5*time.Millisecond, cfg.Schedule.Tick)
	assert.Equal(t, 30*time.Second, cfg.Schedule.Persist)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	require.NoError(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
