// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-ocr/internal/convert"
	"github.com/pdiddy/pdf-ocr/internal/discover"
	"github.com/pdiddy/pdf-ocr/internal/pdfinfo"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <input>",
	Short: "Estimate the OCR cost of a PDF or directory",
	Long: `Estimate counts the pages of each PDF that a conversion would process and
prices them at the per-page rate, without contacting the OCR service. PDFs
that already have output are skipped exactly as the conversion would skip
them.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().Bool("txt", false, "skip PDFs that already have .txt output")
	estimateCmd.Flags().Bool("md", false, "skip PDFs that already have .md output")
	estimateCmd.MarkFlagsMutuallyExclusive("txt", "md")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	format, err := formatFromFlags(cmd, cfg.Conversion.Format)
	if err != nil {
		return err
	}

	found, err := discover.Discover(args[0], format.Ext())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if found.Skipped > 0 {
		fmt.Fprintf(out, "skipped: %d PDF(s) already converted\n", found.Skipped)
	}

	est := convert.EstimateCost(found.Files, pdfinfo.PageCount, out)
	if est.Files == 0 && est.Failed > 0 {
		return fmt.Errorf("no readable PDFs among %d file(s)", est.Failed)
	}
	return nil
}
