package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kassabot/internal/core"
	"kassabot/internal/parser"
	"kassabot/internal/period"
)

var addCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Parse a free-form text and record the entry",
	Long: `Parse a free-form text like "40 Euro Haarschnitt" or "12 Euro Shampoo
gekauft" and record the resulting entry with today's date and time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, optionally filtered by period",
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show income, expenses, and profit totals",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)

	listCmd.Flags().StringP("period", "p", period.All, "Filter period: today, week, month, year, all")
	statsCmd.Flags().String("start", "", "Range start (dd.mm.yyyy)")
	statsCmd.Flags().String("end", "", "Range end (dd.mm.yyyy)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	parsed := parser.Parse(text)
	if parsed.Amount.Cents <= 0 {
		return fmt.Errorf("no positive amount found in %q", text)
	}

	ctx := context.Background()
	result, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	now := time.Now()
	stored, err := result.Store.AddEntry(ctx, core.Entry{
		Date:        core.FormatDisplayDate(now),
		Time:        core.FormatDisplayTime(now),
		Type:        parsed.Type,
		Amount:      parsed.Amount,
		Description: parsed.Description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("#%d  %s %s  %s  %s EUR  %s\n",
		stored.ID, stored.Date, stored.Time, stored.Type.Label(), stored.Amount.Format(), stored.Description)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	p, _ := cmd.Flags().GetString("period")
	switch p {
	case period.Today, period.Week, period.Month, period.Year, period.All:
	default:
		return fmt.Errorf("invalid period %q: must be one of today, week, month, year, all", p)
	}

	ctx := context.Background()
	result, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	entries, err := result.Store.AllEntries(ctx)
	if err != nil {
		return err
	}
	entries = period.GroupByPeriod(entries, p, time.Now())

	if len(entries) == 0 {
		fmt.Println("no entries")
		return nil
	}

	for _, e := range entries {
		sign := "+"
		if e.Type == core.Expense {
			sign = "-"
		}
		fmt.Printf("#%-4d %s %s  %s%8s EUR  %s\n",
			e.ID, e.Date, e.Time, sign, e.Amount.Format(), e.Description)
	}

	totals := period.Totals(entries)
	fmt.Printf("\nEinnahmen %s  Ausgaben %s  Gewinn %s\n",
		totals.Income.Format(), totals.Expenses.Format(), totals.Profit.Format())
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	ctx := context.Background()
	result, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	stats, err := result.Store.Statistics(ctx, start, end)
	if err != nil {
		return err
	}

	fmt.Printf("Einnahmen: %s EUR\n", stats.Income.Format())
	fmt.Printf("Ausgaben:  %s EUR\n", stats.Expenses.Format())
	fmt.Printf("Gewinn:    %s EUR\n", stats.Profit.Format())
	return nil
}
