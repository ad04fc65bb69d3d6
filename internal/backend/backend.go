// Package backend selects and initializes the record store at startup:
// the relational SQLite backend when it can be brought up, the flat-list
// file backend otherwise. Callers receive a ledger.Store and never branch
// on the backend identity except through its Capabilities.
package backend

import (
	"fmt"

	"kassabot/internal/config"
)

// Backend type names.
const (
	SQLite = "sqlite"
	Flat   = "flat"
)

// Config holds what the factory needs to bring a store up.
type Config struct {
	// Type is the requested backend; SQLite may still degrade to Flat
	// when initialization fails.
	Type string

	SQLiteDBPath string

	// LegacyEntriesPath is the flat-list blob: the fallback backend's
	// storage file and the legacy migration source for SQLite.
	LegacyEntriesPath string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type:              appConfig.DataBackend,
		SQLiteDBPath:      appConfig.SQLiteDBPath,
		LegacyEntriesPath: appConfig.LegacyEntriesPath,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Flat:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.LegacyEntriesPath == "" {
		return fmt.Errorf("flat-list entries path is required")
	}
	return nil
}
