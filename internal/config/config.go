// Package config loads server configuration from EVLEDGER_* environment
// variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Ledger  LedgerConfig
	Admin   AdminConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host            string        `env:"EVLEDGER_HOST"`
	Port            int           `env:"EVLEDGER_PORT"             envDefault:"8080"`
	ReadTimeout     time.Duration `env:"EVLEDGER_READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"EVLEDGER_WRITE_TIMEOUT"    envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"EVLEDGER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// StorageConfig selects and locates the storage backend
type StorageConfig struct {
	Backend    string `env:"EVLEDGER_STORAGE"     envDefault:"memory"`
	RedisURL   string `env:"EVLEDGER_REDIS_URL"   envDefault:"redis://localhost:6379"`
	SQLitePath string `env:"EVLEDGER_SQLITE_PATH" envDefault:"evledger.db"`
}

// LedgerConfig holds ledger rules
type LedgerConfig struct {
	StartingCurrency int64 `env:"EVLEDGER_STARTING_CURRENCY" envDefault:"2000"`
}

// AdminConfig provisions the bootstrap admin account
type AdminConfig struct {
	Username   string        `env:"EVLEDGER_ADMIN_USERNAME" envDefault:"admin"`
	Password   string        `env:"EVLEDGER_ADMIN_PASSWORD"`
	SessionTTL time.Duration `env:"EVLEDGER_SESSION_TTL"    envDefault:"24h"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `env:"EVLEDGER_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"EVLEDGER_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("EVLEDGER_PORT out of range: %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("EVLEDGER_STORAGE must be memory, redis or sqlite, got %q", c.Storage.Backend)
	}
	if c.Ledger.StartingCurrency < 0 {
		return fmt.Errorf("EVLEDGER_STARTING_CURRENCY must not be negative")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("EVLEDGER_SESSION_TTL must be positive")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("EVLEDGER_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	return nil
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return 0, fmt.Errorf("EVLEDGER_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
