package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entries carry their calendar date as a German day.month.year string.
// The canonical stored form is zero-padded ("05.03.2026"), but legacy data
// written by older sessions may lack the padding ("5.3.2026"), so parsing
// is lenient about it.

// FormatDisplayDate renders t in the canonical dd.mm.yyyy form.
func FormatDisplayDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatDisplayTime renders t in the HH:MM display form.
func FormatDisplayTime(t time.Time) string {
	return t.Format("15:04")
}

// ParseDisplayDate parses a dd.mm.yyyy date string, with or without zero
// padding, into a UTC midnight time.
func ParseDisplayDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// DateSortKey converts a display date to a yyyymmdd key so that string
// comparison orders chronologically. Lexicographic comparison of the raw
// day.month.year form would mis-order across month and year boundaries.
func DateSortKey(s string) (string, error) {
	t, err := ParseDisplayDate(s)
	if err != nil {
		return "", err
	}
	return t.Format("20060102"), nil
}
