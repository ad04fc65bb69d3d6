// Package worker turns the entry event stream into portable CSV backups
// of the whole ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"kassabot/internal/amqp"
	"kassabot/internal/ledger"
)

// BackupWorker rewrites a CSV snapshot of the ledger whenever entries
// change. Snapshots are throttled: events arriving within minInterval of
// the last write are acknowledged without producing a new file, since the
// next event (or restart) will capture the same state.
type BackupWorker struct {
	store       ledger.Store
	dir         string
	minInterval time.Duration

	mu        sync.Mutex
	lastWrite time.Time
}

func NewBackupWorker(store ledger.Store, dir string, minInterval time.Duration) *BackupWorker {
	return &BackupWorker{
		store:       store,
		dir:         dir,
		minInterval: minInterval,
	}
}

// HandleEntryEvent processes one entry event from AMQP.
func (w *BackupWorker) HandleEntryEvent(ctx context.Context, msg *amqp.EntryEventMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastWrite.IsZero() && time.Since(w.lastWrite) < w.minInterval {
		slog.DebugContext(ctx, "Skipping backup, last snapshot is recent",
			"event_id", msg.EventID, "last_write", w.lastWrite)
		return nil
	}

	if err := w.writeSnapshot(ctx); err != nil {
		return fmt.Errorf("write backup snapshot: %w", err)
	}
	w.lastWrite = time.Now()

	slog.InfoContext(ctx, "Backup snapshot written",
		"event_id", msg.EventID,
		"entry_id", msg.EntryID,
		"action", msg.Action,
		"dir", w.dir)
	return nil
}

// WriteSnapshot forces a snapshot regardless of the throttle, used at
// worker startup to cover events missed while the worker was down.
func (w *BackupWorker) WriteSnapshot(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writeSnapshot(ctx); err != nil {
		return err
	}
	w.lastWrite = time.Now()
	return nil
}

func (w *BackupWorker) writeSnapshot(ctx context.Context) error {
	data, err := w.store.ExportCSV(ctx)
	if err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	target := filepath.Join(w.dir, "ledger-backup.csv")
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
