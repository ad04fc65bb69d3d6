package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"kassabot/internal/core"
	"kassabot/internal/ledger"
	"kassabot/internal/log"
	"kassabot/internal/parser"
	"kassabot/internal/period"
)

// createEntryRequest carries a raw utterance plus optional overrides. When
// date/time are absent the entry lands on the current day.
type createEntryRequest struct {
	Text     string `json:"text"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Category string `json:"category,omitempty"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed := parser.Parse(req.Text)
	if parsed.Amount.Cents <= 0 {
		parseRejections.Inc()
		writeError(w, http.StatusUnprocessableEntity, "no positive amount found in text")
		return
	}

	now := s.now()
	entry := core.Entry{
		Date:        core.FormatDisplayDate(now),
		Time:        core.FormatDisplayTime(now),
		Type:        parsed.Type,
		Amount:      parsed.Amount,
		Description: parsed.Description,
		Category:    req.Category,
	}
	if req.Date != "" {
		entry.Date = req.Date
	}
	if req.Time != "" {
		entry.Time = req.Time
	}

	stored, err := s.svc.AddEntry(r.Context(), entry)
	if err != nil {
		s.writeStoreError(w, r, err, "create entry")
		return
	}
	s.statsCache.Purge()
	entriesCreated.WithLabelValues(string(stored.Type)).Inc()

	s.logger.InfoContext(r.Context(), "Entry created",
		log.NewFields().
			WithEntry(stored.ID, string(stored.Type), stored.Amount.Cents, stored.Description).
			WithOperation(log.OpCreate).
			ToSlice()...)

	writeJSON(w, http.StatusCreated, toEntryJSON(stored))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	var entries []core.Entry
	var err error
	if start != "" && end != "" {
		entries, err = s.svc.EntriesByDateRange(r.Context(), start, end)
	} else {
		entries, err = s.svc.AllEntries(r.Context())
	}
	if err != nil {
		s.writeStoreError(w, r, err, "list entries")
		return
	}

	if p := q.Get("period"); p != "" {
		entries = period.GroupByPeriod(entries, p, s.now())
	}

	writeJSON(w, http.StatusOK, toEntriesJSON(entries))
}

// handleGroupedEntries serves the history view: per-date buckets ordered
// newest first, each with its own totals.
func (s *Server) handleGroupedEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.AllEntries(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "list entries")
		return
	}
	if p := r.URL.Query().Get("period"); p != "" {
		entries = period.GroupByPeriod(entries, p, s.now())
	}

	grouped := period.GroupByDate(entries)

	type dateBucket struct {
		Date    string      `json:"date"`
		Entries []entryJSON `json:"entries"`
		Totals  statsJSON   `json:"totals"`
	}
	buckets := make([]dateBucket, 0, len(grouped))
	for _, date := range period.DatesDescending(grouped) {
		buckets = append(buckets, dateBucket{
			Date:    date,
			Entries: toEntriesJSON(grouped[date]),
			Totals:  toStatsJSON(period.Totals(grouped[date])),
		})
	}

	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	entry, err := s.svc.Entry(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "get entry")
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(entry))
}

// handleUpdateEntry re-parses the submitted text and replaces the entry's
// type, amount, and description, keeping the stored date, time, and
// category (unless overridden).
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed := parser.Parse(req.Text)
	if parsed.Amount.Cents <= 0 {
		parseRejections.Inc()
		writeError(w, http.StatusUnprocessableEntity, "no positive amount found in text")
		return
	}

	current, err := s.svc.Entry(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "get entry")
		return
	}

	current.Type = parsed.Type
	current.Amount = parsed.Amount
	current.Description = parsed.Description
	if req.Date != "" {
		current.Date = req.Date
	}
	if req.Time != "" {
		current.Time = req.Time
	}
	if req.Category != "" {
		current.Category = req.Category
	}

	stored, err := s.svc.UpdateEntry(r.Context(), id, current)
	if err != nil {
		s.writeStoreError(w, r, err, "update entry")
		return
	}
	s.statsCache.Purge()

	writeJSON(w, http.StatusOK, toEntryJSON(stored))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteEntry(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "delete entry")
		return
	}
	s.statsCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	cacheKey := fmt.Sprintf("stats|%s|%s", start, end)
	if stats, ok := s.statsCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, toStatsJSON(stats))
		return
	}

	stats, err := s.svc.Statistics(r.Context(), start, end)
	if err != nil {
		s.writeStoreError(w, r, err, "statistics")
		return
	}
	s.statsCache.Set(cacheKey, stats)

	writeJSON(w, http.StatusOK, toStatsJSON(stats))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	t := core.EntryType(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		writeError(w, http.StatusBadRequest, "type must be 'income' or 'expense'")
		return
	}

	cats, err := s.svc.Categories(r.Context(), t)
	if err != nil {
		s.writeStoreError(w, r, err, "categories")
		return
	}

	out := make([]categoryJSON, len(cats))
	for i, c := range cats {
		out[i] = categoryJSON{ID: c.ID, Name: c.Name, Type: string(c.Type), Color: c.Color}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	caps := s.svc.Capabilities()
	writeJSON(w, http.StatusOK, map[string]any{
		"backend":         s.backendName,
		"database_export": caps.DatabaseExport,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportCSV(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "export csv")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="kassabot-export.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleExportDatabase(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportDatabase(r.Context())
	if errors.Is(err, ledger.ErrUnsupported) {
		writeError(w, http.StatusNotImplemented, "database export is not available in fallback mode")
		return
	}
	if err != nil {
		s.writeStoreError(w, r, err, "export database")
		return
	}
	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="kassabot.db"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return 0, false
	}
	return id, true
}

// writeStoreError maps store failures onto HTTP statuses. A failed persist
// means in-memory and stored state may diverge; surface it, never mask it.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidType) || errors.Is(err, core.ErrEmptyDescription) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.ErrorContext(r.Context(), "Store operation failed",
		log.NewFields().WithOperation(op).WithError(err).ToSlice()...)
	writeError(w, http.StatusInternalServerError, "store operation failed")
}
