// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pdf-ocr/internal/discover"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Succeeded int
	Failed    int
	Pages     int
	CostUSD   float64
	Results   []Result
}

// Total returns the number of jobs attempted.
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any job failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PlanJobs turns a discovery result into conversion jobs. Every job copies
// base and gets its own source and output path.
func PlanJobs(found discover.Result, base types.ConversionJob, policy types.OverwritePolicy) ([]types.ConversionJob, error) {
	jobs := make([]types.ConversionJob, 0, len(found.Files))
	for _, f := range found.Files {
		out, err := ResolveOutputPath(f, base.Format.Ext(), found.Single, policy)
		if err != nil {
			return nil, err
		}
		job := base
		job.Source = types.InputSpec{Path: f}
		job.OutputPath = out
		job.SingleFile = found.Single
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// RunBatch converts jobs one at a time, or through a pool of Workers
// goroutines when the configuration asks for more than one. A failed job is
// reported and counted; the batch continues. Cancelling ctx lets jobs that
// already started finish and keeps new ones from starting.
func (c *Converter) RunBatch(ctx context.Context, jobs []types.ConversionJob) BatchResult {
	out := &lockedWriter{w: c.out}
	errOut := io.Writer(out)
	if c.errOut != c.out {
		errOut = &lockedWriter{w: c.errOut}
	}
	worker := *c
	worker.out = out
	worker.errOut = errOut

	var (
		mu     sync.Mutex
		result BatchResult
	)
	slots := make([]*Result, len(jobs))

	runOne := func(i int, job types.ConversionJob) {
		name := displayName(job)
		fmt.Fprintf(out, "processing: %s\n", name)

		res, err := worker.Run(context.WithoutCancel(ctx), job)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			worker.log.Error("conversion failed", "source", job.Source.String(), "error", err)
			fmt.Fprintf(errOut, "failed:  %s (%v)\n", name, err)
			return
		}
		result.Succeeded++
		result.Pages += res.PageCount
		result.CostUSD += res.CostUSD
		slots[i] = &res
		fmt.Fprintf(out, "converted: %s -> %s (%d pages, $%.4f)\n",
			name, filepath.Base(res.OutputPath), res.PageCount, res.CostUSD)
	}

	if c.cfg.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(c.cfg.Workers)
		for i, job := range jobs {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				runOne(i, job)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, job := range jobs {
			if ctx.Err() != nil {
				break
			}
			runOne(i, job)
		}
	}

	if ctx.Err() != nil {
		c.log.Warn("batch interrupted", "attempted", result.Total(), "jobs", len(jobs))
		fmt.Fprintf(out, "interrupted: %d of %d files not attempted\n", len(jobs)-result.Total(), len(jobs))
	}

	for _, r := range slots {
		if r != nil {
			result.Results = append(result.Results, *r)
		}
	}

	fmt.Fprintf(out, "\nBatch summary: %d converted, %d failed (total: %d), %d pages, $%.4f\n",
		result.Succeeded, result.Failed, result.Total(), result.Pages, result.CostUSD)
	return result
}

func displayName(job types.ConversionJob) string {
	if job.Source.IsRemote() {
		return job.Source.URL
	}
	return filepath.Base(job.Source.Path)
}

// lockedWriter serializes writes from concurrent workers so status lines do
// not interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
