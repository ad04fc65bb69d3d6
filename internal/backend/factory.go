package backend

import (
	"context"
	"fmt"
	"os"

	"kassabot/internal/flatstore"
	"kassabot/internal/ledger"
	"kassabot/internal/log"
	"kassabot/internal/storage"
)

// Result is an initialized store plus the name of the backend that
// actually came up (which may differ from the requested one).
type Result struct {
	Store   ledger.Store
	Backend string
}

// Open initializes the requested backend. A SQLite initialization failure
// is not fatal: the factory logs it and degrades to the flat-list backend
// for the rest of the session. When SQLite comes up on a freshly created
// database file, data from a prior fallback-mode session is migrated into
// it once and the legacy blob is deleted.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Type == Flat {
		return openFlat(cfg, logger)
	}

	fresh := !fileExists(cfg.SQLiteDBPath)
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Warn("SQLite backend failed to initialize, falling back to flat-list store",
			"db_path", cfg.SQLiteDBPath, "error", err)
		return openFlat(cfg, logger)
	}

	if fresh {
		migrateLegacy(ctx, store, cfg.LegacyEntriesPath, logger)
	}

	logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &Result{Store: store, Backend: SQLite}, nil
}

func openFlat(cfg Config, logger *log.Logger) (*Result, error) {
	store, err := flatstore.Open(cfg.LegacyEntriesPath)
	if err != nil {
		return nil, fmt.Errorf("initialize flat-list store: %w", err)
	}
	logger.Info("Initialized flat-list backend", "path", cfg.LegacyEntriesPath)
	return &Result{Store: store, Backend: Flat}, nil
}

// migrateLegacy moves flat-list records of a prior fallback session into
// the relational schema, preserving ids. Row failures are skipped inside
// ImportLegacy; the blob is deleted only after the import ran.
func migrateLegacy(ctx context.Context, store *storage.SQLiteStore, legacyPath string, logger *log.Logger) {
	entries, skipped, err := flatstore.ReadFile(legacyPath)
	if err != nil {
		logger.Warn("Cannot read legacy flat-list data, skipping migration",
			"path", legacyPath, "error", err)
		return
	}
	if len(entries) == 0 && skipped == 0 {
		return
	}

	logger.Info("Migrating legacy flat-list data",
		"path", legacyPath, "records", len(entries), "invalid", skipped)

	imported, err := store.ImportLegacy(ctx, entries)
	if err != nil {
		logger.Error("Legacy migration failed, keeping flat-list blob",
			"path", legacyPath, "error", err)
		return
	}

	if err := os.Remove(legacyPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Cannot remove migrated legacy blob", "path", legacyPath, "error", err)
		return
	}

	logger.Info("Legacy migration completed", "imported", imported, "skipped", len(entries)-imported+skipped)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
