package parser

import (
	"testing"

	"kassabot/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantType core.EntryType
		wantCent int64
		wantDesc string
	}{
		{
			name:     "service with amount",
			text:     "40 Euro Haarschnitt",
			wantType: core.Income,
			wantCent: 4000,
			wantDesc: "Haarschnitt",
		},
		{
			name:     "purchase",
			text:     "12 Euro Shampoo gekauft",
			wantType: core.Expense,
			wantCent: 1200,
			wantDesc: "Shampoo",
		},
		{
			name:     "comma decimal without currency",
			text:     "5,50 Material",
			wantType: core.Expense,
			wantCent: 550,
			wantDesc: "Material",
		},
		{
			name:     "dot decimal",
			text:     "12.99 euro Farbe gekauft",
			wantType: core.Expense,
			wantCent: 1299,
			wantDesc: "Farbe",
		},
		{
			name:     "no amount",
			text:     "kein betrag hier",
			wantType: core.Income,
			wantCent: 0,
			wantDesc: "kein betrag hier",
		},
		{
			name:     "expense wins over income cue",
			text:     "30 Euro Haarschnitt Material",
			wantType: core.Expense,
			wantCent: 3000,
			wantDesc: "Haarschnitt Material",
		},
		{
			name:     "explicit income label stripped",
			text:     "Einnahme 25 Euro Waschen",
			wantType: core.Income,
			wantCent: 2500,
			wantDesc: "Waschen",
		},
		{
			name:     "explicit expense label stripped",
			text:     "Ausgabe 8 Euro",
			wantType: core.Expense,
			wantCent: 800,
			wantDesc: "Ausgabe",
		},
		{
			name:     "amount only falls back to type label",
			text:     "15 Euro",
			wantType: core.Income,
			wantCent: 1500,
			wantDesc: "Einnahme",
		},
		{
			name:     "first number wins",
			text:     "20 Euro Färben 5 Kunden",
			wantType: core.Income,
			wantCent: 2000,
			wantDesc: "Färben Kunden",
		},
		{
			name:     "cues are case insensitive",
			text:     "9 EURO MATERIAL BEZAHLT",
			wantType: core.Expense,
			wantCent: 900,
			wantDesc: "MATERIAL",
		},
		{
			name:     "empty input",
			text:     "",
			wantType: core.Income,
			wantCent: 0,
			wantDesc: "Einnahme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)

			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Amount.Cents != tt.wantCent {
				t.Errorf("Amount.Cents = %d, want %d", got.Amount.Cents, tt.wantCent)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	text := "40 Euro Haarschnitt"
	first := Parse(text)
	for i := 0; i < 10; i++ {
		if got := Parse(text); got != first {
			t.Fatalf("Parse(%q) = %+v, want %+v", text, got, first)
		}
	}
}
