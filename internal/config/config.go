// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Roulette  RouletteConfig  `mapstructure:"roulette"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// RouletteConfig holds table configuration.
type RouletteConfig struct {
	GameDurationSeconds int               `mapstructure:"game_duration_seconds"`
	DurationOverrides   map[string]string `mapstructure:"duration_overrides"` // chat id -> seconds
	HistoryCapacity     int               `mapstructure:"history_capacity"`
	StartingBalance     int64             `mapstructure:"starting_balance"`
	NeighborCount       int               `mapstructure:"neighbor_count"`
}

// StorageConfig selects where the statistics snapshot lives.
type StorageConfig struct {
	SnapshotDriver   string        `mapstructure:"snapshot_driver"` // postgres or sqlite
	SQLitePath       string        `mapstructure:"sqlite_path"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
}

// RedisConfig holds the round-result publisher configuration.
// An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// KafkaConfig holds the round-result writer configuration.
// No brokers disables it.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
// Port 0 disables the server.
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, ROULETTE_GAME_DURATION_SECONDS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "roulette")
	v.SetDefault("database.name", "roulette")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Roulette defaults
	v.SetDefault("roulette.game_duration_seconds", 15)
	v.SetDefault("roulette.history_capacity", 400)
	v.SetDefault("roulette.starting_balance", 1000)
	v.SetDefault("roulette.neighbor_count", 2)

	v.SetDefault("storage.snapshot_driver", "postgres")
	v.SetDefault("storage.sqlite_path", "roulette.db")
	v.SetDefault("storage.autosave_interval", "5m")

	v.SetDefault("redis.channel", "roulette.rounds")
	v.SetDefault("kafka.topic", "roulette.rounds")
	v.SetDefault("metrics.port", 9090)
}

// parseSeconds accepts only positive whole numbers of seconds.
func parseSeconds(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// GameDuration returns the betting window for a chat. Per-chat overrides win
// over the global value. Values that are not positive whole seconds are ignored.
func (r *RouletteConfig) GameDuration(chatID int64) time.Duration {
	if raw, ok := r.DurationOverrides[strconv.FormatInt(chatID, 10)]; ok {
		if n, ok := parseSeconds(raw); ok {
			return time.Duration(n) * time.Second
		}
	}
	if r.GameDurationSeconds > 0 {
		return time.Duration(r.GameDurationSeconds) * time.Second
	}
	return 15 * time.Second
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
