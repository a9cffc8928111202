// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger appends cost-tracking records for processed documents.
// Records are never rewritten. Every recorder serializes its own writes, so a
// single recorder can be shared by concurrent conversion workers.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// UnitCostUSD is the provider price per processed page.
const UnitCostUSD = 0.001

// DefaultPath is the default CSV ledger location.
const DefaultPath = "ocr_usage_tracking.csv"

// dateLayout is the ISO-8601 layout used for processing_date.
const dateLayout = time.RFC3339

// Recorder appends tracking records.
type Recorder interface {
	Record(ctx context.Context, rec types.TrackingRecord) error
	Close() error
}

// Cost returns the charge for pages at UnitCostUSD.
func Cost(pages int) float64 {
	return float64(pages) * UnitCostUSD
}

// NewRecord builds a record for a finished conversion.
func NewRecord(filename string, pages int, outputPath string, at time.Time) types.TrackingRecord {
	return types.TrackingRecord{
		Filename:    filename,
		PageCount:   pages,
		ProcessedAt: at,
		CostUSD:     Cost(pages),
		OutputPath:  outputPath,
	}
}

// Open returns a recorder for path in the given format.
func Open(path string, format types.LedgerFormat) (Recorder, error) {
	switch format {
	case types.LedgerCSV, "":
		return NewCSVRecorder(path), nil
	case types.LedgerText:
		return NewTextRecorder(path), nil
	case types.LedgerSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("unsupported ledger format %q", format)
}

// Multi fans a record out to every recorder.
type Multi []Recorder

// Record writes rec to each recorder and joins their errors.
func (m Multi) Record(ctx context.Context, rec types.TrackingRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes each recorder.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Summary totals a ledger.
type Summary struct {
	Files   int       `json:"files" yaml:"files"`
	Pages   int       `json:"pages" yaml:"pages"`
	CostUSD float64   `json:"cost_usd" yaml:"cost_usd"`
	First   time.Time `json:"first" yaml:"first"`
	Last    time.Time `json:"last" yaml:"last"`
}

func (s *Summary) add(pages int, cost float64, at time.Time) {
	s.Files++
	s.Pages += pages
	s.CostUSD += cost
	if at.IsZero() {
		return
	}
	if s.First.IsZero() || at.Before(s.First) {
		s.First = at
	}
	if at.After(s.Last) {
		s.Last = at
	}
}

// Summarize reads a CSV or SQLite ledger and totals it.
func Summarize(ctx context.Context, path string, format types.LedgerFormat) (Summary, error) {
	if _, err := os.Stat(path); err != nil {
		return Summary{}, fmt.Errorf("reading ledger: %w", err)
	}
	switch format {
	case types.LedgerCSV, "":
		return summarizeCSV(path)
	case types.LedgerSQLite:
		return summarizeSQLite(ctx, path)
	}
	return Summary{}, fmt.Errorf("cannot summarize %s ledgers: use csv or sqlite", format)
}
