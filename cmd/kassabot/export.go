package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kassabot/internal/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger as CSV or as the raw database file",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().String("format", "csv", "Export format: csv or db")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	ctx := context.Background()
	result, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	var data []byte
	switch format {
	case "csv":
		data, err = result.Store.ExportCSV(ctx)
	case "db":
		data, err = result.Store.ExportDatabase(ctx)
		if errors.Is(err, ledger.ErrUnsupported) {
			return fmt.Errorf("database export is not available on the %s backend", result.Backend)
		}
	default:
		return fmt.Errorf("invalid format %q: must be csv or db", format)
	}
	if err != nil {
		return err
	}

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", len(data), output)
	return nil
}
