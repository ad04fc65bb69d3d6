package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kassabot/internal/core"
	"kassabot/internal/ledger"

	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02 15:04:05"

// dateKeyExpr reorders the stored dd.mm.yyyy date into yyyymmdd inside SQL
// so ORDER BY and BETWEEN are calendar-correct. Dates are normalized to the
// zero-padded form on every write, which this expression relies on.
const dateKeyExpr = "substr(date,7,4) || substr(date,4,2) || substr(date,1,2)"

// SQLiteStore is the primary backend: a relational store over a local
// SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Capabilities() ledger.Capabilities {
	return ledger.Capabilities{DatabaseExport: true}
}

const entryColumns = "id, date, time, type, amount_cents, description, COALESCE(category, ''), created_at, updated_at"

func (s *SQLiteStore) AllEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY "+dateKeyExpr+" DESC, time DESC")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *SQLiteStore) Entry(ctx context.Context, id int64) (core.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("query entry %d: %w", id, err)
	}
	return e, nil
}

func (s *SQLiteStore) EntriesByDateRange(ctx context.Context, start, end string) ([]core.Entry, error) {
	startKey, err := core.DateSortKey(start)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	endKey, err := core.DateSortKey(end)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE "+dateKeyExpr+" BETWEEN ? AND ? ORDER BY "+dateKeyExpr+" DESC, time DESC",
		startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("query entries by range: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *SQLiteStore) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	e.Date = normalizeDate(e.Date)

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (date, time, type, amount_cents, description, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Date, e.Time, string(e.Type), e.Amount.Cents, e.Description,
		nullable(e.Category), now.Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"type", e.Type,
		"amount_cents", e.Amount.Cents,
		"description", e.Description)

	return e, nil
}

func (s *SQLiteStore) UpdateEntry(ctx context.Context, id int64, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	e.Date = normalizeDate(e.Date)

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries
		 SET date = ?, time = ?, type = ?, amount_cents = ?, description = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		e.Date, e.Time, string(e.Type), e.Amount.Cents, e.Description,
		nullable(e.Category), now.Format(timestampLayout), id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Entry{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Entry{}, ledger.ErrNotFound
	}

	e.ID = id
	e.UpdatedAt = now
	return e, nil
}

func (s *SQLiteStore) DeleteEntry(ctx context.Context, id int64) error {
	// Idempotent: deleting a missing id is not an error.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Statistics(ctx context.Context, start, end string) (core.Stats, error) {
	query := "SELECT type, SUM(amount_cents) FROM entries"
	var args []any
	if start != "" && end != "" {
		startKey, err := core.DateSortKey(start)
		if err != nil {
			return core.Stats{}, fmt.Errorf("range start: %w", err)
		}
		endKey, err := core.DateSortKey(end)
		if err != nil {
			return core.Stats{}, fmt.Errorf("range end: %w", err)
		}
		query += " WHERE " + dateKeyExpr + " BETWEEN ? AND ?"
		args = append(args, startKey, endKey)
	}
	query += " GROUP BY type"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return core.Stats{}, fmt.Errorf("query statistics: %w", err)
	}
	defer rows.Close()

	var stats core.Stats
	for rows.Next() {
		var typ string
		var total int64
		if err := rows.Scan(&typ, &total); err != nil {
			return core.Stats{}, fmt.Errorf("scan statistics row: %w", err)
		}
		switch core.EntryType(typ) {
		case core.Income:
			stats.Income.Cents = total
		case core.Expense:
			stats.Expenses.Cents = total
		}
	}
	if err := rows.Err(); err != nil {
		return core.Stats{}, fmt.Errorf("statistics rows: %w", err)
	}
	stats.Profit.Cents = stats.Income.Cents - stats.Expenses.Cents
	return stats, nil
}

func (s *SQLiteStore) Categories(ctx context.Context, t core.EntryType) ([]core.Category, error) {
	query := "SELECT id, name, type, COALESCE(color, '') FROM categories"
	var args []any
	if t != "" {
		query += " WHERE type = ?"
		args = append(args, string(t))
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.EntryType(typ)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category rows: %w", err)
	}
	return cats, nil
}

func (s *SQLiteStore) ExportCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	return core.MarshalCSV(entries), nil
}

// ExportDatabase hands out the raw database file for portable backups.
func (s *SQLiteStore) ExportDatabase(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("read database file: %w", err)
	}
	return data, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var e core.Entry
	var typ, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Date, &e.Time, &typ, &e.Amount.Cents,
		&e.Description, &e.Category, &createdAt, &updatedAt)
	if err != nil {
		return core.Entry{}, err
	}
	e.Type = core.EntryType(typ)
	e.CreatedAt = parseTimestamp(createdAt)
	e.UpdatedAt = parseTimestamp(updatedAt)
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]core.Entry, error) {
	var entries []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entry rows: %w", err)
	}
	return entries, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeDate rewrites a lenient display date into the canonical
// zero-padded form dateKeyExpr depends on. Validate ran before this, so
// the parse cannot fail here.
func normalizeDate(date string) string {
	t, err := core.ParseDisplayDate(date)
	if err != nil {
		return date
	}
	return core.FormatDisplayDate(t)
}
