// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// csvHeader is written once, when the ledger file is created.
var csvHeader = []string{"filename", "page_count", "processing_date", "cost_usd", "output_path"}

// CSVRecorder appends rows to a CSV ledger. The file is opened and closed
// around every write so an interrupted run never leaves a half-open handle.
type CSVRecorder struct {
	path string
	mu   sync.Mutex
}

// NewCSVRecorder returns a recorder for path. Nothing is written until the
// first Record.
func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

// Record appends one row, writing the header first when the file is new.
func (c *CSVRecorder) Record(_ context.Context, rec types.TrackingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return appendTo(c.path, func(w io.Writer, empty bool) error {
		cw := csv.NewWriter(w)
		if empty {
			if err := cw.Write(csvHeader); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{
			rec.Filename,
			strconv.Itoa(rec.PageCount),
			rec.ProcessedAt.Format(dateLayout),
			fmt.Sprintf("%.4f", rec.CostUSD),
			rec.OutputPath,
		}); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	})
}

// Close is a no-op; files are closed after every write.
func (c *CSVRecorder) Close() error { return nil }

// TextRecorder appends one human-readable line per record.
type TextRecorder struct {
	path string
	mu   sync.Mutex
}

// NewTextRecorder returns a recorder for path.
func NewTextRecorder(path string) *TextRecorder {
	return &TextRecorder{path: path}
}

// Record appends "name: N pages, processed on DATE, cost: $C, output: PATH".
func (t *TextRecorder) Record(_ context.Context, rec types.TrackingRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return appendTo(t.path, func(w io.Writer, _ bool) error {
		_, err := fmt.Fprintf(w, "%s: %d pages, processed on %s, cost: $%.4f, output: %s\n",
			rec.Filename, rec.PageCount, rec.ProcessedAt.Format(dateLayout), rec.CostUSD, rec.OutputPath)
		return err
	})
}

// Close is a no-op; files are closed after every write.
func (t *TextRecorder) Close() error { return nil }

// appendTo opens path for appending, reports whether it was empty, and
// closes it once write returns.
func appendTo(path string, write func(w io.Writer, empty bool) error) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("inspecting ledger %s: %w", path, err)
	}

	writeErr := write(f, info.Size() == 0)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("writing ledger %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing ledger %s: %w", path, closeErr)
	}
	return nil
}

func summarizeCSV(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	var s Summary
	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Summary{}, fmt.Errorf("reading ledger %s: %w", path, err)
		}
		if line == 1 && row[0] == csvHeader[0] {
			continue
		}

		pages, err := strconv.Atoi(row[1])
		if err != nil {
			return Summary{}, fmt.Errorf("ledger %s line %d: bad page_count %q", path, line, row[1])
		}
		cost, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return Summary{}, fmt.Errorf("ledger %s line %d: bad cost_usd %q", path, line, row[3])
		}
		at, _ := time.Parse(dateLayout, row[2])
		s.add(pages, cost, at)
	}
	return s, nil
}
