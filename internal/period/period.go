// Package period buckets ledger entries by calendar window and sums them.
// All functions are pure over an in-memory entry slice; the reference time
// is passed explicitly.
package period

import (
	"sort"
	"time"

	"kassabot/internal/core"
)

const (
	Today = "today"
	Week  = "week"
	Month = "month"
	Year  = "year"
	All   = "all"
)

// IsToday reports whether the entry date equals now's calendar date.
func IsToday(date string, now time.Time) bool {
	d, err := core.ParseDisplayDate(date)
	if err != nil {
		return false
	}
	return d.Equal(midnight(now))
}

// IsThisWeek reports whether the entry date falls into the week containing
// now. Weeks run Monday 00:00:00 through Sunday 23:59:59.999.
func IsThisWeek(date string, now time.Time) bool {
	d, err := core.ParseDisplayDate(date)
	if err != nil {
		return false
	}
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the running week
	}
	start := midnight(now).AddDate(0, 0, -(weekday - 1))
	end := start.AddDate(0, 0, 6)
	return !d.Before(start) && !d.After(end)
}

// IsThisMonth reports whether the entry date is in now's month and year.
func IsThisMonth(date string, now time.Time) bool {
	d, err := core.ParseDisplayDate(date)
	if err != nil {
		return false
	}
	return d.Month() == now.Month() && d.Year() == now.Year()
}

// IsThisYear reports whether the entry date is in now's year.
func IsThisYear(date string, now time.Time) bool {
	d, err := core.ParseDisplayDate(date)
	if err != nil {
		return false
	}
	return d.Year() == now.Year()
}

// GroupByPeriod filters entries by the named bucket. An unrecognized
// period, including "all", returns the input unfiltered.
func GroupByPeriod(entries []core.Entry, period string, now time.Time) []core.Entry {
	switch period {
	case Today:
		return filter(entries, func(e core.Entry) bool { return IsToday(e.Date, now) })
	case Week:
		return filter(entries, func(e core.Entry) bool { return IsThisWeek(e.Date, now) })
	case Month:
		return filter(entries, func(e core.Entry) bool { return IsThisMonth(e.Date, now) })
	case Year:
		return filter(entries, func(e core.Entry) bool { return IsThisYear(e.Date, now) })
	default:
		return entries
	}
}

// GroupByDate partitions entries into per-date buckets keyed by the literal
// date string, preserving the input order within each bucket.
func GroupByDate(entries []core.Entry) map[string][]core.Entry {
	grouped := make(map[string][]core.Entry)
	for _, e := range entries {
		grouped[e.Date] = append(grouped[e.Date], e)
	}
	return grouped
}

// DatesDescending returns the keys of a GroupByDate result sorted by
// calendar date, newest first. Keys that fail to parse sort last.
func DatesDescending(grouped map[string][]core.Entry) []string {
	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		ki, erri := core.DateSortKey(dates[i])
		kj, errj := core.DateSortKey(dates[j])
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return ki > kj
	})
	return dates
}

// Totals sums entries by direction. An empty collection yields all zeros.
func Totals(entries []core.Entry) core.Stats {
	var stats core.Stats
	for _, e := range entries {
		switch e.Type {
		case core.Income:
			stats.Income.Cents += e.Amount.Cents
		case core.Expense:
			stats.Expenses.Cents += e.Amount.Cents
		}
	}
	stats.Profit.Cents = stats.Income.Cents - stats.Expenses.Cents
	return stats
}

func filter(entries []core.Entry, keep func(core.Entry) bool) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
