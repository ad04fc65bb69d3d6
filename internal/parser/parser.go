// Package parser turns a free-text utterance ("40 Euro Haarschnitt") into
// a candidate ledger entry. It is pure and deterministic: malformed input
// never produces an error, only a zero amount, and the caller decides
// admissibility by checking Result.Amount.
package parser

import (
	"regexp"
	"strings"

	"kassabot/internal/core"
)

// Result is a candidate entry. The store assigns identity and timestamps.
type Result struct {
	Type        core.EntryType
	Amount      core.Money
	Description string
}

var (
	// First numeric token: digits, optional decimal separator with one or
	// two fractional digits, optional currency marker directly after.
	amountRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{1,2})?)\s*(?:euro|€|eur)?`)

	// Literal direction labels stripped from the description.
	labelRe = regexp.MustCompile(`(?i)einnahme|ausgabe|gekauft|bezahlt`)

	expenseCues = []string{"gekauft", "ausgabe", "bezahlt", "kosten", "ausgegeben", "material", "einkauf"}
	incomeCues  = []string{"einnahme", "verdient", "erhalten", "haarschnitt", "schnitt", "färben", "waschen"}
)

// Parse extracts amount, direction, and description from raw text.
//
// Direction is decided by case-insensitive substring cues; when both an
// expense and an income cue match, expense wins. Unlabeled text with a
// positive amount defaults to income (most unlabeled entries in this
// domain are services rendered). This asymmetry is a business default,
// not an accident.
func Parse(text string) Result {
	lower := strings.ToLower(text)

	var cents int64
	if m := amountRe.FindStringSubmatch(text); m != nil {
		// The regex caps fractional digits at two, so the only parse
		// failure left is a zero amount, which maps to rejection anyway.
		cents, _ = core.ParseDecimalToCents(m[1])
	}

	isExpense := containsAny(lower, expenseCues)
	isIncome := containsAny(lower, incomeCues)

	var typ core.EntryType
	switch {
	case isExpense:
		// Expense cues dominate even when an income cue also matched.
		typ = core.Expense
	case isIncome:
		typ = core.Income
	default:
		// No cue at all: unlabeled entries count as services rendered.
		typ = core.Income
	}

	// Description: original casing, with every number-like token (plus
	// currency marker) and the literal direction labels removed.
	description := amountRe.ReplaceAllString(text, "")
	description = labelRe.ReplaceAllString(description, "")
	description = strings.TrimSpace(description)
	if description == "" {
		description = typ.Label()
	}

	return Result{
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Description: description,
	}
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}
