// Package ledger defines the port through which the rest of the
// application talks to the record store, regardless of which backend is
// active.
package ledger

import (
	"context"
	"errors"

	"kassabot/internal/core"
)

var (
	// ErrNotFound is returned when an operation names an entry id that
	// does not exist. Deletes are idempotent and never return it.
	ErrNotFound = errors.New("entry not found")

	// ErrUnsupported is returned for capability-gated operations the
	// active backend cannot perform.
	ErrUnsupported = errors.New("operation not supported by this backend")
)

// Capabilities describes what the active backend can do beyond the common
// surface. Callers branch on this only to gate capability-dependent UI.
type Capabilities struct {
	// DatabaseExport is true when the backend can hand out its whole
	// persisted state as a portable database file.
	DatabaseExport bool
}

// Store is the record store contract. Implementations are initialized
// exactly once before any caller sees them; there is a single logical
// writer, so no operation overlaps another.
type Store interface {
	// AllEntries returns every entry, newest calendar date first, then
	// time descending within a day.
	AllEntries(ctx context.Context) ([]core.Entry, error)

	// Entry returns a single entry by id, or ErrNotFound.
	Entry(ctx context.Context, id int64) (core.Entry, error)

	// EntriesByDateRange returns entries whose date lies in the inclusive
	// [start, end] range of display dates.
	EntriesByDateRange(ctx context.Context, start, end string) ([]core.Entry, error)

	// AddEntry persists a validated entry, assigns its identity and
	// timestamps, and returns the stored record.
	AddEntry(ctx context.Context, e core.Entry) (core.Entry, error)

	// UpdateEntry replaces all mutable fields of the entry with the given
	// id. Returns ErrNotFound when the id does not exist.
	UpdateEntry(ctx context.Context, id int64, e core.Entry) (core.Entry, error)

	// DeleteEntry removes an entry by id. Deleting a missing id is not an
	// error.
	DeleteEntry(ctx context.Context, id int64) error

	// Statistics returns the grouped sums over entry types, optionally
	// restricted to an inclusive date range (both empty = everything).
	Statistics(ctx context.Context, start, end string) (core.Stats, error)

	// Categories returns known categories ordered by name, optionally
	// filtered by type ("" = all).
	Categories(ctx context.Context, t core.EntryType) ([]core.Category, error)

	// ExportCSV serializes all entries into the portable CSV format.
	ExportCSV(ctx context.Context) ([]byte, error)

	// ExportDatabase returns the raw persisted database, or ErrUnsupported
	// when Capabilities().DatabaseExport is false.
	ExportDatabase(ctx context.Context) ([]byte, error)

	Capabilities() Capabilities

	Close() error
}
