package period

import (
	"testing"
	"time"

	"kassabot/internal/core"
)

// Thursday, 05.03.2026. The containing week runs Monday 02.03 through
// Sunday 08.03.
var refNow = time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)

func entry(id int64, date string, typ core.EntryType, cents int64) core.Entry {
	return core.Entry{ID: id, Date: date, Time: "12:00", Type: typ, Amount: core.Money{Cents: cents}, Description: "x"}
}

func TestIsToday(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"05.03.2026", true},
		{"5.3.2026", true}, // unpadded legacy form
		{"04.03.2026", false},
		{"05.03.2025", false},
		{"not-a-date", false},
	}
	for _, tt := range tests {
		if got := IsToday(tt.date, refNow); got != tt.want {
			t.Errorf("IsToday(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestIsThisWeek(t *testing.T) {
	tests := []struct {
		name string
		date string
		now  time.Time
		want bool
	}{
		{name: "monday start", date: "02.03.2026", now: refNow, want: true},
		{name: "sunday end", date: "08.03.2026", now: refNow, want: true},
		{name: "previous sunday", date: "01.03.2026", now: refNow, want: false},
		{name: "next monday", date: "09.03.2026", now: refNow, want: false},
		// When now itself is a Sunday it still belongs to the running
		// week, not the next one.
		{name: "now on sunday", date: "02.03.2026", now: time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC), want: true},
		{name: "invalid date", date: "xx", now: refNow, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsThisWeek(tt.date, tt.now); got != tt.want {
				t.Errorf("IsThisWeek(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestGroupByPeriod(t *testing.T) {
	entries := []core.Entry{
		entry(1, "05.03.2026", core.Income, 4000),  // today
		entry(2, "03.03.2026", core.Expense, 550),  // this week
		entry(3, "10.02.2026", core.Income, 2000),  // this month? no, February
		entry(4, "15.03.2025", core.Expense, 1200), // last year
	}

	tests := []struct {
		period  string
		wantIDs []int64
	}{
		{Today, []int64{1}},
		{Week, []int64{1, 2}},
		{Month, []int64{1, 2}},
		{Year, []int64{1, 2, 3}},
		{All, []int64{1, 2, 3, 4}},
		{"bogus", []int64{1, 2, 3, 4}}, // unrecognized periods filter nothing
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got := GroupByPeriod(entries, tt.period, refNow)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("entry[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestTotals(t *testing.T) {
	entries := []core.Entry{
		entry(1, "05.03.2026", core.Income, 4000),
		entry(2, "05.03.2026", core.Income, 2500),
		entry(3, "05.03.2026", core.Expense, 550),
	}

	got := Totals(entries)
	if got.Income.Cents != 6500 {
		t.Errorf("Income = %d, want 6500", got.Income.Cents)
	}
	if got.Expenses.Cents != 550 {
		t.Errorf("Expenses = %d, want 550", got.Expenses.Cents)
	}
	if got.Profit.Cents != 5950 {
		t.Errorf("Profit = %d, want 5950", got.Profit.Cents)
	}
}

func TestTotalsEmpty(t *testing.T) {
	got := Totals(nil)
	if got.Income.Cents != 0 || got.Expenses.Cents != 0 || got.Profit.Cents != 0 {
		t.Errorf("Totals(nil) = %+v, want zeros", got)
	}
}

func TestTotalsNegativeProfit(t *testing.T) {
	entries := []core.Entry{
		entry(1, "05.03.2026", core.Income, 1000),
		entry(2, "05.03.2026", core.Expense, 2500),
	}
	if got := Totals(entries); got.Profit.Cents != -1500 {
		t.Errorf("Profit = %d, want -1500", got.Profit.Cents)
	}
}

func TestGroupByDate(t *testing.T) {
	entries := []core.Entry{
		entry(1, "05.03.2026", core.Income, 4000),
		entry(2, "04.03.2026", core.Expense, 550),
		entry(3, "05.03.2026", core.Income, 2000),
	}

	grouped := GroupByDate(entries)
	if len(grouped) != 2 {
		t.Fatalf("got %d buckets, want 2", len(grouped))
	}
	if got := grouped["05.03.2026"]; len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("bucket 05.03.2026 = %v, want entries 1 and 3 in input order", got)
	}
}

func TestDatesDescending(t *testing.T) {
	grouped := map[string][]core.Entry{
		"28.12.2025": nil,
		"02.01.2026": nil,
		"15.01.2026": nil,
	}

	got := DatesDescending(grouped)
	want := []string{"15.01.2026", "02.01.2026", "28.12.2025"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DatesDescending = %v, want %v", got, want)
		}
	}
}
