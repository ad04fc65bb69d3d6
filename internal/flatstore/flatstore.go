// Package flatstore is the fallback backend: an ordered flat list of
// entries persisted as a single JSON array file. It keeps the exact blob
// layout older Kassabot sessions wrote (euro-float amounts, bare array),
// so the same file doubles as the legacy migration source for the SQLite
// backend.
package flatstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"kassabot/internal/core"
	"kassabot/internal/ledger"
	"kassabot/internal/period"
)

// record is the on-disk entry layout of the legacy blob.
type record struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}

// Store keeps the whole collection in memory and rewrites the blob on
// every mutation. A mutation reaches memory only after the blob was
// written, so in-memory and persisted state never diverge silently.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []core.Entry
	nextID  int64
}

// Open loads the blob at path if it exists. Records that fail validation
// are dropped from the in-memory view (they stay in the blob until the
// next successful save).
func Open(path string) (*Store, error) {
	s := &Store{path: path, nextID: 1}
	entries, _, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.entries = entries
	for _, e := range entries {
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return s, nil
}

// ReadFile loads and validates a flat-list blob. Invalid records are
// counted and skipped, not fatal; a missing file yields an empty list.
func ReadFile(path string) (entries []core.Entry, skipped int, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read flat store: %w", err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("decode flat store: %w", err)
	}

	for _, r := range records {
		e := r.toEntry()
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

func (r record) toEntry() core.Entry {
	return core.Entry{
		ID:          r.ID,
		Date:        r.Date,
		Time:        r.Time,
		Type:        core.EntryType(r.Type),
		Amount:      core.Money{Cents: core.CentsFromEuros(r.Amount)},
		Description: r.Description,
		Category:    r.Category,
	}
}

func toRecord(e core.Entry) record {
	return record{
		ID:          e.ID,
		Date:        e.Date,
		Time:        e.Time,
		Type:        string(e.Type),
		Amount:      e.Amount.Euros(),
		Description: e.Description,
		Category:    e.Category,
	}
}

func (s *Store) Capabilities() ledger.Capabilities {
	return ledger.Capabilities{DatabaseExport: false}
}

func (s *Store) Close() error { return nil }

func (s *Store) AllEntries(ctx context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.entries), nil
}

func (s *Store) Entry(ctx context.Context, id int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Entry{}, ledger.ErrNotFound
}

func (s *Store) EntriesByDateRange(ctx context.Context, start, end string) ([]core.Entry, error) {
	startKey, err := core.DateSortKey(start)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	endKey, err := core.DateSortKey(end)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Entry
	for _, e := range s.entries {
		key, err := core.DateSortKey(e.Date)
		if err != nil {
			continue
		}
		if key >= startKey && key <= endKey {
			out = append(out, e)
		}
	}
	return sortedCopy(out), nil
}

func (s *Store) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	next := append(sliceCopy(s.entries), e)
	if err := s.save(next); err != nil {
		return core.Entry{}, err
	}
	s.entries = next
	s.nextID++
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id int64, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := sliceCopy(s.entries)
	found := false
	for i := range next {
		if next[i].ID == id {
			e.ID = id
			next[i] = e
			found = true
			break
		}
	}
	if !found {
		return core.Entry{}, ledger.ErrNotFound
	}
	if err := s.save(next); err != nil {
		return core.Entry{}, err
	}
	s.entries = next
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Entry, 0, len(s.entries))
	removed := false
	for _, e := range s.entries {
		if e.ID == id {
			removed = true
			continue
		}
		next = append(next, e)
	}
	if !removed {
		// Idempotent: nothing to persist either.
		return nil
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *Store) Statistics(ctx context.Context, start, end string) (core.Stats, error) {
	var entries []core.Entry
	var err error
	if start != "" && end != "" {
		entries, err = s.EntriesByDateRange(ctx, start, end)
	} else {
		entries, err = s.AllEntries(ctx)
	}
	if err != nil {
		return core.Stats{}, err
	}
	return period.Totals(entries), nil
}

// Categories returns the seeded default set. The flat blob has no category
// table; the fixed defaults keep the UI working in fallback mode.
func (s *Store) Categories(ctx context.Context, t core.EntryType) ([]core.Category, error) {
	defaults := []core.Category{
		{ID: 5, Name: "Einkauf", Type: core.Expense, Color: "#F59E0B"},
		{ID: 2, Name: "Färben", Type: core.Income, Color: "#3B82F6"},
		{ID: 1, Name: "Haarschnitt", Type: core.Income, Color: "#10B981"},
		{ID: 4, Name: "Material", Type: core.Expense, Color: "#EF4444"},
		{ID: 6, Name: "Sonstiges", Type: core.Expense, Color: "#6B7280"},
		{ID: 3, Name: "Waschen", Type: core.Income, Color: "#8B5CF6"},
	}
	if t == "" {
		return defaults, nil
	}
	var out []core.Category
	for _, c := range defaults {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) ExportCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	return core.MarshalCSV(entries), nil
}

func (s *Store) ExportDatabase(ctx context.Context) ([]byte, error) {
	return nil, ledger.ErrUnsupported
}

// save writes the blob atomically: marshal, write a temp file, rename.
func (s *Store) save(entries []core.Entry) error {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = toRecord(e)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode flat store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write flat store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace flat store: %w", err)
	}
	return nil
}

func sliceCopy(entries []core.Entry) []core.Entry {
	return append([]core.Entry(nil), entries...)
}

// sortedCopy orders entries by calendar date descending, then time
// descending within a day.
func sortedCopy(entries []core.Entry) []core.Entry {
	out := sliceCopy(entries)
	sort.SliceStable(out, func(i, j int) bool {
		ki, erri := core.DateSortKey(out[i].Date)
		kj, errj := core.DateSortKey(out[j].Date)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		if ki != kj {
			return ki > kj
		}
		return out[i].Time > out[j].Time
	})
	return out
}
