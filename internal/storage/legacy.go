package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kassabot/internal/core"
)

// ImportLegacy inserts records salvaged from a legacy flat-list blob into
// the relational schema, preserving their original ids. Category is left
// unset; the legacy format never had one. A failing row is logged and
// skipped, the rest of the import proceeds. Returns the number of rows
// actually inserted.
func (s *SQLiteStore) ImportLegacy(ctx context.Context, entries []core.Entry) (int, error) {
	now := time.Now().UTC().Format(timestampLayout)
	imported := 0
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid legacy entry",
				"id", e.ID, "error", err)
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO entries (id, date, time, type, amount_cents, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, normalizeDate(e.Date), e.Time, string(e.Type),
			e.Amount.Cents, e.Description, now, now)
		if err != nil {
			slog.WarnContext(ctx, "Failed to migrate legacy entry",
				"id", e.ID, "error", err)
			continue
		}
		imported++
	}

	if imported < len(entries) {
		slog.InfoContext(ctx, "Legacy migration finished with skipped rows",
			"imported", imported, "skipped", len(entries)-imported)
	}
	if imported == 0 && len(entries) > 0 {
		return 0, fmt.Errorf("no legacy entries could be migrated")
	}
	return imported, nil
}
