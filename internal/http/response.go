package http

import (
	"encoding/json"
	"net/http"

	"kassabot/internal/core"
)

// entryJSON is the wire form of an entry; amounts travel as euro floats.
type entryJSON struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
}

type statsJSON struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type categoryJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
}

func toEntryJSON(e core.Entry) entryJSON {
	return entryJSON{
		ID:          e.ID,
		Date:        e.Date,
		Time:        e.Time,
		Type:        string(e.Type),
		Amount:      e.Amount.Euros(),
		Description: e.Description,
		Category:    e.Category,
	}
}

func toEntriesJSON(entries []core.Entry) []entryJSON {
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = toEntryJSON(e)
	}
	return out
}

func toStatsJSON(s core.Stats) statsJSON {
	return statsJSON{
		Income:   s.Income.Euros(),
		Expenses: s.Expenses.Euros(),
		Profit:   s.Profit.Euros(),
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
