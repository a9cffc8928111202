// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/pdf-ocr/internal/ocr"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

func batchJobs(t *testing.T, dir string, names ...string) []types.ConversionJob {
	t.Helper()
	var jobs []types.ConversionJob
	for _, n := range names {
		pdf := writePDF(t, dir, n)
		jobs = append(jobs, types.ConversionJob{
			Source:     types.InputSpec{Path: pdf},
			OutputPath: filepath.Join(dir, strings.TrimSuffix(n, ".pdf")+".md"),
			Format:     types.FormatMarkdown,
		})
	}
	return jobs
}

func TestRunBatch_PartialFailure(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			dir := t.TempDir()
			jobs := batchJobs(t, dir, "a.pdf", "b.pdf", "c.pdf")
			proc := &fakeProcessor{
				pages: threePages(),
				errs:  map[string]error{"b.pdf": errors.New("bad pdf")},
			}

			var out bytes.Buffer
			c := New(proc, WithOutput(&out, &out), WithConfig(types.ConversionConfig{Workers: workers}))
			result := c.RunBatch(context.Background(), jobs)

			if result.Succeeded != 2 {
				t.Errorf("succeeded = %d, want 2", result.Succeeded)
			}
			if result.Failed != 1 {
				t.Errorf("failed = %d, want 1", result.Failed)
			}
			if !result.HasFailures() {
				t.Error("HasFailures should be true")
			}
			if result.Total() != 3 {
				t.Errorf("total = %d, want 3", result.Total())
			}
			if result.Pages != 6 {
				t.Errorf("pages = %d, want 6", result.Pages)
			}
			if len(result.Results) != 2 || filepath.Base(result.Results[0].OutputPath) != "a.md" {
				t.Errorf("results = %+v", result.Results)
			}

			for _, name := range []string{"a.md", "c.md"} {
				if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
					t.Errorf("expected output %s: %v", name, err)
				}
			}
			if _, err := os.Stat(filepath.Join(dir, "b.md")); err == nil {
				t.Error("failed job should not write output")
			}

			log := out.String()
			for _, want := range []string{"converted: a.pdf -> a.md", "failed:  b.pdf", "Batch summary: 2 converted, 1 failed (total: 3)"} {
				if !strings.Contains(log, want) {
					t.Errorf("output %q does not contain %q", log, want)
				}
			}
		})
	}
}

func TestRunBatch_CancelledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	jobs := batchJobs(t, dir, "a.pdf", "b.pdf")
	proc := &fakeProcessor{pages: threePages()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	result := New(proc, WithOutput(&out, &out)).RunBatch(ctx, jobs)

	if result.Total() != 0 {
		t.Errorf("total = %d, want 0", result.Total())
	}
	if len(proc.calls) != 0 {
		t.Errorf("processor called %d times, want 0", len(proc.calls))
	}
	if !strings.Contains(out.String(), "interrupted: 2 of 2 files not attempted") {
		t.Errorf("output %q does not report the interruption", out.String())
	}
}

// cancellingProcessor cancels the batch context during the first job.
type cancellingProcessor struct {
	fakeProcessor
	cancel context.CancelFunc
}

func (p *cancellingProcessor) Process(ctx context.Context, doc ocr.Document, opts ocr.Options) (types.OCRResult, error) {
	p.cancel()
	if ctx.Err() != nil {
		return types.OCRResult{}, ctx.Err()
	}
	return p.fakeProcessor.Process(ctx, doc, opts)
}

func TestRunBatch_CurrentJobFinishes(t *testing.T) {
	dir := t.TempDir()
	jobs := batchJobs(t, dir, "a.pdf", "b.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc := &cancellingProcessor{fakeProcessor: fakeProcessor{pages: threePages()}, cancel: cancel}

	result := New(proc).RunBatch(ctx, jobs)
	if result.Succeeded != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want the first job to finish and the second to be skipped", result)
	}
}

func TestEstimateCost(t *testing.T) {
	counts := map[string]int{"a.pdf": 10, "b.pdf": 5}
	count := func(path string) (int, error) {
		n, ok := counts[filepath.Base(path)]
		if !ok {
			return 0, errors.New("not a PDF")
		}
		return n, nil
	}

	var out bytes.Buffer
	est := EstimateCost([]string{"/x/a.pdf", "/x/b.pdf", "/x/broken.pdf"}, count, &out)

	if est.Files != 2 || est.Pages != 15 || est.Failed != 1 {
		t.Errorf("estimate = %+v", est)
	}
	if est.CostUSD < 0.01499 || est.CostUSD > 0.01501 {
		t.Errorf("cost = %f, want 0.015", est.CostUSD)
	}
	if !strings.Contains(out.String(), "Estimate: 2 files, 15 pages, $0.0150 (1 unreadable)") {
		t.Errorf("output %q missing totals", out.String())
	}
}
