package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

type (
	// EntryType is the direction of an entry: money in or money out.
	EntryType string

	// Entry is one income or expense record. Amount carries the magnitude
	// only; the sign is conveyed by Type.
	Entry struct {
		ID          int64
		Date        string // display form, dd.mm.yyyy
		Time        string // display form, HH:MM
		Type        EntryType
		Amount      Money
		Description string
		Category    string // optional, empty when unset
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Category labels entries of one direction and carries a display color.
	Category struct {
		ID    int64
		Name  string
		Type  EntryType
		Color string
	}

	// Stats is the aggregated result of a grouped sum over entry types.
	Stats struct {
		Income   Money
		Expenses Money
		Profit   Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
)

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the localized display label for the type.
func (t EntryType) Label() string {
	if t == Income {
		return "Einnahme"
	}
	return "Ausgabe"
}

func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if _, err := ParseDisplayDate(e.Date); err != nil {
		return err
	}
	return nil
}
