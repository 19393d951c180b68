// Package config loads server settings from defaults, an optional YAML
// file, and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Environment variables that override file settings
const (
	EnvConfigPath  = "IDLECOINS_CONFIG"
	EnvStorageType = "STORAGE_TYPE"
	EnvRedisURL    = "REDIS_URL"
	EnvSQLitePath  = "SQLITE_PATH"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Game     GameConfig     `yaml:"game"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

type StorageConfig struct {
	Type   string       `yaml:"type"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type RedisConfig struct {
	URL          string `yaml:"url"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type GameConfig struct {
	// CatalogPath replaces the built-in upgrade catalog when set
	CatalogPath          string        `yaml:"catalog_path"`
	MaxGoldenClickChance float64       `yaml:"max_golden_click_chance"`
	OfflineCap           time.Duration `yaml:"offline_cap"`
	MaxIDLength          int           `yaml:"max_id_length"`
	LeaderboardSize      int           `yaml:"leaderboard_size"`
}

type ScheduleConfig struct {
	Tick        time.Duration `yaml:"tick"`
	Persist     time.Duration `yaml:"persist"`
	Leaderboard time.Duration `yaml:"leaderboard"`
	Cleanup     time.Duration `yaml:"cleanup"`
}

type CleanupConfig struct {
	Retention  time.Duration `yaml:"retention"`
	MoneyBelow float64       `yaml:"money_below"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Type: StorageMemory,
			Redis: RedisConfig{
				PoolSize:     10,
				MinIdleConns: 2,
			},
			SQLite: SQLiteConfig{
				Path: "data/idlecoins.db",
			},
		},
		Game: GameConfig{
			MaxGoldenClickChance: 0.95,
			OfflineCap:           24 * time.Hour,
			MaxIDLength:          100,
			LeaderboardSize:      10,
		},
		Schedule: ScheduleConfig{
			Tick:        time.Second,
			Persist:     30 * time.Second,
			Leaderboard: time.Minute,
			Cleanup:     time.Hour,
		},
		Cleanup: CleanupConfig{
			Retention:  7 * 24 * time.Hour,
			MoneyBelow: 100,
		},
	}
}

// Load reads settings from path (if non-empty) over the defaults, then
// applies environment overrides and validates the result
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvStorageType); v != "" {
		c.Storage.Type = strings.ToLower(v)
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Storage.Redis.URL = v
	}
	if v := getenv(EnvSQLitePath); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	return nil
}

// WithDefaults fills every zero-valued setting from Default
func (c Config) WithDefaults() Config {
	d := Default()

	fillDuration(&c.Server.ReadTimeout, d.Server.ReadTimeout)
	fillDuration(&c.Server.WriteTimeout, d.Server.WriteTimeout)
	fillDuration(&c.Server.ShutdownTimeout, d.Server.ShutdownTimeout)
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Storage.Type == "" {
		c.Storage.Type = d.Storage.Type
	}
	if c.Storage.Redis.PoolSize == 0 {
		c.Storage.Redis.PoolSize = d.Storage.Redis.PoolSize
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = d.Storage.SQLite.Path
	}
	if c.Game.MaxGoldenClickChance == 0 {
		c.Game.MaxGoldenClickChance = d.Game.MaxGoldenClickChance
	}
	fillDuration(&c.Game.OfflineCap, d.Game.OfflineCap)
	if c.Game.MaxIDLength == 0 {
		c.Game.MaxIDLength = d.Game.MaxIDLength
	}
	if c.Game.LeaderboardSize == 0 {
		c.Game.LeaderboardSize = d.Game.LeaderboardSize
	}
	fillDuration(&c.Schedule.Tick, d.Schedule.Tick)
	fillDuration(&c.Schedule.Persist, d.Schedule.Persist)
	fillDuration(&c.Schedule.Leaderboard, d.Schedule.Leaderboard)
	fillDuration(&c.Schedule.Cleanup, d.Schedule.Cleanup)
	fillDuration(&c.Cleanup.Retention, d.Cleanup.Retention)
	if c.Cleanup.MoneyBelow == 0 {
		c.Cleanup.MoneyBelow = d.Cleanup.MoneyBelow
	}
	return c
}

func fillDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// Validate reports the first setting that cannot be used
func (c Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			return fmt.Errorf("%s required when storage type is redis", EnvRedisURL)
		}
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return errors.New("sqlite path required when storage type is sqlite")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Server.Port)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Game.MaxGoldenClickChance <= 0 || c.Game.MaxGoldenClickChance >= 1 {
		return fmt.Errorf("max_golden_click_chance must be in (0,1), got %v", c.Game.MaxGoldenClickChance)
	}
	if c.Game.OfflineCap < 0 {
		return errors.New("offline_cap must not be negative")
	}
	if c.Game.LeaderboardSize <= 0 {
		return errors.New("leaderboard_size must be positive")
	}

	for name, d := range map[string]time.Duration{
		"tick":        c.Schedule.Tick,
		"persist":     c.Schedule.Persist,
		"leaderboard": c.Schedule.Leaderboard,
		"cleanup":     c.Schedule.Cleanup,
	} {
		if d <= 0 {
			return fmt.Errorf("schedule.%s must be positive", name)
		}
	}
	if c.Cleanup.Retention <= 0 {
		return errors.New("cleanup.retention must be positive")
	}
	return nil
}

// ParseLevel maps a level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger builds the process logger described by the settings
func (c LogConfig) NewLogger(w *os.File) *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
