// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-ocr/internal/ledger"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the usage ledger",
}

var ledgerSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total the files, pages, and cost recorded in a ledger",
	Long: `Summary reads a CSV or SQLite ledger and prints the number of files, the
pages processed, the accumulated cost, and the date range covered. Without
--track-file it reads the default CSV ledger.`,
	Args: cobra.NoArgs,
	RunE: runLedgerSummary,
}

func init() {
	ledgerSummaryCmd.Flags().String("track-file", "", "ledger to read (default: the configured default ledger)")
	ledgerSummaryCmd.Flags().String("track-format", "", "ledger format: csv or sqlite (default csv)")

	ledgerCmd.AddCommand(ledgerSummaryCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerSummary(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("track-file")
	formatName, _ := cmd.Flags().GetString("track-format")
	if path == "" {
		path = viper.GetString("ledger.path")
	}
	format := types.LedgerCSV
	if formatName != "" {
		f, err := types.ParseLedgerFormat(formatName)
		if err != nil {
			return err
		}
		format = f
	}

	sum, err := ledger.Summarize(cmd.Context(), path, format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ledger:  %s\n", path)
	fmt.Fprintf(out, "Files:   %d\n", sum.Files)
	fmt.Fprintf(out, "Pages:   %d\n", sum.Pages)
	fmt.Fprintf(out, "Cost:    $%.4f\n", sum.CostUSD)
	if !sum.First.IsZero() {
		fmt.Fprintf(out, "Period:  %s to %s\n", sum.First.Format("2006-01-02"), sum.Last.Format("2006-01-02"))
	}
	return nil
}
