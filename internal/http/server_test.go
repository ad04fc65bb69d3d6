package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kassabot/internal/flatstore"
	"kassabot/internal/log"
	"kassabot/internal/services"
)

var testNow = time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

func testServer(t *testing.T) *Server {
	t.Helper()

	store, err := flatstore.Open(filepath.Join(t.TempDir(), "entries.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := services.NewLedgerService(store, nil)
	t.Cleanup(func() { svc.Close() })

	srv := NewServer(svc, "flat", log.New(log.Config{Component: "test"}))
	srv.now = func() time.Time { return testNow }
	return srv
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEntry(t *testing.T, rec *httptest.ResponseRecorder) entryJSON {
	t.Helper()
	var e entryJSON
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	return e
}

func TestHealth(t *testing.T) {
	h := testServer(t).Handler()
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"backend":"flat"`) {
		t.Errorf("body = %s, want backend name", rec.Body.String())
	}
}

func TestCreateEntry(t *testing.T) {
	h := testServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "40 Euro Haarschnitt"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	e := decodeEntry(t, rec)
	if e.Type != "income" || e.Amount != 40 || e.Description != "Haarschnitt" {
		t.Errorf("entry = %+v", e)
	}
	if e.Date != "05.03.2026" || e.Time != "14:30" {
		t.Errorf("date/time = %q %q, want server clock values", e.Date, e.Time)
	}
	if e.ID == 0 {
		t.Error("entry has no id")
	}
}

func TestCreateEntryWithOverrides(t *testing.T) {
	h := testServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{
		"text":     "12 Euro Shampoo gekauft",
		"date":     "01.03.2026",
		"time":     "09:15",
		"category": "Einkauf",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	e := decodeEntry(t, rec)
	if e.Type != "expense" || e.Date != "01.03.2026" || e.Time != "09:15" || e.Category != "Einkauf" {
		t.Errorf("entry = %+v", e)
	}
}

func TestCreateEntryRejectsZeroAmount(t *testing.T) {
	h := testServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "kein betrag hier"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCreateEntryRejectsBadBody(t *testing.T) {
	h := testServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank text: status = %d, want 400", rec.Code)
	}
}

func TestListEntriesWithPeriod(t *testing.T) {
	h := testServer(t).Handler()

	for _, body := range []map[string]string{
		{"text": "40 Euro Haarschnitt"},                    // today
		{"text": "12 Euro Material", "date": "03.03.2026"}, // this week
		{"text": "99 Euro Färben", "date": "15.01.2026"},   // this year only
	} {
		if rec := doJSON(t, h, http.MethodPost, "/api/entries", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed entry: status = %d", rec.Code)
		}
	}

	tests := []struct {
		period string
		want   int
	}{
		{"today", 1},
		{"week", 2},
		{"year", 3},
		{"all", 3},
	}
	for _, tt := range tests {
		rec := doJSON(t, h, http.MethodGet, "/api/entries?period="+tt.period, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("period %s: status = %d", tt.period, rec.Code)
		}
		var entries []entryJSON
		if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
			t.Fatal(err)
		}
		if len(entries) != tt.want {
			t.Errorf("period %s: got %d entries, want %d", tt.period, len(entries), tt.want)
		}
	}
}

func TestUpdateEntryReparsesText(t *testing.T) {
	h := testServer(t).Handler()

	created := decodeEntry(t, doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{
		"text": "40 Euro Haarschnitt", "date": "01.03.2026", "time": "09:00", "category": "Haarschnitt",
	}))

	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/entries/%d", created.ID),
		map[string]string{"text": "12 Euro Material gekauft"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	e := decodeEntry(t, rec)
	if e.Type != "expense" || e.Amount != 12 || e.Description != "Material" {
		t.Errorf("reparsed entry = %+v", e)
	}
	// Date, time, and category of the original entry are preserved.
	if e.Date != "01.03.2026" || e.Time != "09:00" || e.Category != "Haarschnitt" {
		t.Errorf("preserved fields = %q %q %q", e.Date, e.Time, e.Category)
	}
}

func TestUpdateEntryMissing(t *testing.T) {
	h := testServer(t).Handler()
	rec := doJSON(t, h, http.MethodPut, "/api/entries/999", map[string]string{"text": "5 Euro x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteEntry(t *testing.T) {
	h := testServer(t).Handler()

	created := decodeEntry(t, doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "40 Euro Haarschnitt"}))

	rec := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/entries/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	// Deleting again stays successful.
	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/entries/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("second delete: status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/entries/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
}

func TestStatisticsReflectsMutations(t *testing.T) {
	h := testServer(t).Handler()

	doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "40 Euro Haarschnitt"})
	doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "15 Euro Material"})

	var stats statsJSON
	rec := doJSON(t, h, http.MethodGet, "/api/statistics", nil)
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Income != 40 || stats.Expenses != 15 || stats.Profit != 25 {
		t.Errorf("stats = %+v", stats)
	}

	// The cached value must not survive a mutation.
	doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "10 Euro Waschen"})

	rec = doJSON(t, h, http.MethodGet, "/api/statistics", nil)
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Income != 50 {
		t.Errorf("Income after new entry = %v, want 50", stats.Income)
	}
}

func TestCategories(t *testing.T) {
	h := testServer(t).Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/categories?type=income", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cats []categoryJSON
	if err := json.NewDecoder(rec.Body).Decode(&cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 {
		t.Errorf("got %d income categories, want 3", len(cats))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/categories?type=transfer", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type: status = %d, want 400", rec.Code)
	}
}

func TestCapabilities(t *testing.T) {
	h := testServer(t).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/capabilities", nil)

	var caps struct {
		Backend        string `json:"backend"`
		DatabaseExport bool   `json:"database_export"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&caps); err != nil {
		t.Fatal(err)
	}
	if caps.Backend != "flat" || caps.DatabaseExport {
		t.Errorf("capabilities = %+v", caps)
	}
}

func TestExportCSV(t *testing.T) {
	h := testServer(t).Handler()
	doJSON(t, h, http.MethodPost, "/api/entries", map[string]string{"text": "40 Euro Haarschnitt"})

	rec := doJSON(t, h, http.MethodGet, "/api/export/csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Datum,Zeit,Typ,Betrag,Beschreibung,Kategorie") {
		t.Errorf("missing header row: %s", body)
	}
	if !strings.Contains(body, `Einnahme,40.00,"Haarschnitt"`) {
		t.Errorf("missing entry row: %s", body)
	}
}

func TestExportDatabaseUnsupportedOnFlat(t *testing.T) {
	h := testServer(t).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/export/db", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}
