// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"uno-score-bot/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Scorebook ScorebookConfig `mapstructure:"scorebook"`
	Storage   StorageConfig   `mapstructure:"storage"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
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

// ScorebookConfig holds the defaults used when a chat starts a new scorebook.
type ScorebookConfig struct {
	Players        []string      `mapstructure:"players"`
	DefaultVariant string        `mapstructure:"default_variant"`
	Timezone       string        `mapstructure:"timezone"`
	RecentLimit    int           `mapstructure:"recent_limit"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout"`
}

// StorageConfig selects where snapshots live.
type StorageConfig struct {
	LocalDir        string `mapstructure:"local_dir"`
	PostgresEnabled bool   `mapstructure:"postgres_enabled"`
}

// HTTPConfig holds the read-only view API settings. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// RateLimitConfig holds the per-user command rate limit.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Location resolves the configured timezone, falling back to UTC.
func (s *ScorebookConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Variant returns the configured default variant, or the built-in default.
func (s *ScorebookConfig) Variant() model.Variant {
	v := model.Variant(s.DefaultVariant)
	if !v.Valid() {
		return model.DefaultVariant
	}
	return v
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

	// e.g. BOT_TOKEN, DATABASE_HOST, STORAGE_POSTGRES_ENABLED
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "unoscore")
	v.SetDefault("database.name", "unoscore")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("scorebook.players", []string{"Player1", "Player2", "Player3"})
	v.SetDefault("scorebook.default_variant", string(model.DefaultVariant))
	v.SetDefault("scorebook.timezone", "Asia/Tokyo")
	v.SetDefault("scorebook.recent_limit", 10)
	v.SetDefault("scorebook.lock_timeout", "5s")

	v.SetDefault("storage.local_dir", "data")
	v.SetDefault("storage.postgres_enabled", true)

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("ratelimit.per_second", 1.0)
	v.SetDefault("ratelimit.burst", 5)
}

// Validate rejects settings the bot cannot start with. A bad timezone or variant is
// not an error; Location and Variant fall back to defaults.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Scorebook.Players) < model.MinPlayers {
		errs = append(errs, fmt.Errorf("scorebook.players needs at least %d names", model.MinPlayers))
	}
	seen := make(map[string]bool, len(c.Scorebook.Players))
	for _, p := range c.Scorebook.Players {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			errs = append(errs, fmt.Errorf("scorebook.players has an empty or repeated name %q", p))
		}
		seen[p] = true
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("ratelimit values must not be negative"))
	}
	if c.Scorebook.LockTimeout < 0 {
		errs = append(errs, errors.New("scorebook.lock_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// IsAdmin checks if a user ID is in the admin list.
// An empty list makes everyone an admin.
func (c *Config) IsAdmin(userID int64) bool {
	return len(c.Admin.IDs) == 0 || slices.Contains(c.Admin.IDs, userID)
}

// IsChatAllowed checks if a chat ID is in the whitelist. An empty whitelist allows all chats.
func (c *Config) IsChatAllowed(chatID int64) bool {
	return len(c.Whitelist.Chats) == 0 || slices.Contains(c.Whitelist.Chats, chatID)
}
