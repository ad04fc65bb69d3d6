package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// HTTP Server
	Port string `toml:"port"`

	// Storage
	DataBackend       string `toml:"data_backend"` // "sqlite" or "flat"
	SQLiteDBPath      string `toml:"sqlite_db_path"`
	LegacyEntriesPath string `toml:"legacy_entries_path"`

	// AMQP (optional; empty URL disables the event stream)
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Backup worker
	BackupDir         string        `toml:"backup_dir"`
	BackupMinInterval time.Duration `toml:"-"`

	// Observability
	MetricsEnabled bool   `toml:"metrics_enabled"`
	LogLevel       string `toml:"log_level"`
}

// fileConfig mirrors Config for TOML decoding; durations are written as
// strings ("30s", "5m") in the file.
type fileConfig struct {
	Config
	BackupMinInterval string `toml:"backup_min_interval"`
}

// Load builds the configuration from an optional TOML file pointed at by
// KASSABOT_CONFIG, with environment variables taking precedence over file
// values, and defaults filling the rest.
func Load() *Config {
	cfg := &Config{
		Port:              "8081",
		DataBackend:       "sqlite",
		SQLiteDBPath:      "./data/kassabot.db",
		LegacyEntriesPath: "./data/entries.json",
		AMQPExchange:      "kassabot",
		AMQPQueue:         "entry_events",
		BackupDir:         "./data/backups",
		BackupMinInterval: 30 * time.Second,
		LogLevel:          "info",
	}

	if path := os.Getenv("KASSABOT_CONFIG"); path != "" {
		// A broken config file should not silently fall back to defaults.
		fc := fileConfig{Config: *cfg, BackupMinInterval: cfg.BackupMinInterval.String()}
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			fmt.Fprintf(os.Stderr, "kassabot: cannot read config file %s: %v\n", path, err)
			os.Exit(1)
		}
		*cfg = fc.Config
		if d, err := time.ParseDuration(fc.BackupMinInterval); err == nil {
			cfg.BackupMinInterval = d
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.LegacyEntriesPath = getEnv("LEGACY_ENTRIES_PATH", cfg.LegacyEntriesPath)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.BackupDir = getEnv("BACKUP_DIR", cfg.BackupDir)
	cfg.BackupMinInterval = getEnvDuration("BACKUP_MIN_INTERVAL", cfg.BackupMinInterval)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite", "flat":
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite flat]", c.DataBackend))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.LegacyEntriesPath == "" {
		errors = append(errors, "legacy entries path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.BackupMinInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid backup min interval %v: must be at least 1 second", c.BackupMinInterval))
	} else if c.BackupMinInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid backup min interval %v: must be at most 24 hours", c.BackupMinInterval))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
