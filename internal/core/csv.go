package core

import "strings"

// csvHeader matches the export format of earlier Kassabot versions.
var csvHeader = []string{"Datum", "Zeit", "Typ", "Betrag", "Beschreibung", "Kategorie"}

// MarshalCSV serializes entries into the portable CSV export format: one
// row per entry, Typ localized, Betrag with two fractional digits, the
// description wrapped in double quotes. Embedded quotes and commas are not
// escaped; that is a known limitation of the format.
func MarshalCSV(entries []Entry) []byte {
	rows := make([]string, 0, len(entries)+1)
	rows = append(rows, strings.Join(csvHeader, ","))
	for _, e := range entries {
		rows = append(rows, strings.Join([]string{
			e.Date,
			e.Time,
			e.Type.Label(),
			e.Amount.Format(),
			`"` + e.Description + `"`,
			e.Category,
		}, ","))
	}
	return []byte(strings.Join(rows, "\n"))
}
