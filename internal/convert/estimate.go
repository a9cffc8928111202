// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/pdf-ocr/internal/ledger"
)

// PageCounter returns the number of pages in a local PDF.
type PageCounter func(path string) (int, error)

// Estimate holds the projected cost of converting a set of files.
type Estimate struct {
	Files   int
	Pages   int
	Failed  int
	CostUSD float64
}

// EstimateCost counts the pages of each file without contacting the OCR
// provider and prices them at the ledger's per-page rate. Files that cannot
// be read are reported and left out of the totals.
func EstimateCost(files []string, count PageCounter, w io.Writer) Estimate {
	var est Estimate
	for _, f := range files {
		n, err := count(f)
		if err != nil {
			est.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(f), err)
			continue
		}
		est.Files++
		est.Pages += n
		fmt.Fprintf(w, "%6d pages  $%.4f  %s\n", n, ledger.Cost(n), filepath.Base(f))
	}
	est.CostUSD = ledger.Cost(est.Pages)
	fmt.Fprintf(w, "\nEstimate: %d files, %d pages, $%.4f", est.Files, est.Pages, est.CostUSD)
	if est.Failed > 0 {
		fmt.Fprintf(w, " (%d unreadable)", est.Failed)
	}
	fmt.Fprintln(w)
	return est
}
