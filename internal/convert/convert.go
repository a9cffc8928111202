// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives PDF-to-text conversion: it fetches remote sources,
// submits documents to the OCR provider, filters and normalizes the returned
// pages, writes the output, and records usage in the tracking ledger.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/pdf-ocr/internal/discover"
	"github.com/pdiddy/pdf-ocr/internal/download"
	"github.com/pdiddy/pdf-ocr/internal/ledger"
	"github.com/pdiddy/pdf-ocr/internal/markup"
	"github.com/pdiddy/pdf-ocr/internal/ocr"
	"github.com/pdiddy/pdf-ocr/internal/pagerange"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// pageSeparator joins the markdown of consecutive pages.
const pageSeparator = "\n\n"

var (
	ErrSourceNotFound    = errors.New("PDF not found")
	ErrSourceNotPDF      = errors.New("expected a PDF file")
	ErrMissingCredential = ocr.ErrMissingCredential
	ErrDownload          = errors.New("download failed")
	ErrOCRService        = errors.New("OCR request failed")
	ErrWrite             = errors.New("writing output failed")
	ErrOutputExists      = errors.New("output already exists")
)

// Result describes one finished conversion.
type Result struct {
	Source     string
	OutputPath string

	// PageCount is the number of pages the provider processed, which is the
	// billing unit for the ledger.
	PageCount int

	// PagesWritten counts the pages that survived the page filter.
	PagesWritten int

	// MissingPages lists requested pages the document does not have.
	MissingPages []int

	Images  int
	CostUSD float64
}

// Converter runs conversion jobs against an OCR processor.
type Converter struct {
	ocr     ocr.Processor
	fetcher download.Fetcher
	ledger  ledger.Recorder
	cfg     types.ConversionConfig
	log     *slog.Logger
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithFetcher sets the downloader used for remote sources.
func WithFetcher(f download.Fetcher) Option {
	return func(c *Converter) { c.fetcher = f }
}

// WithLedger enables usage tracking.
func WithLedger(r ledger.Recorder) Option {
	return func(c *Converter) { c.ledger = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.log = l }
}

// WithOutput sets the writers for per-file status lines and failures.
func WithOutput(out, errOut io.Writer) Option {
	return func(c *Converter) {
		c.out = out
		c.errOut = errOut
	}
}

// WithConfig sets the conversion settings.
func WithConfig(cfg types.ConversionConfig) Option {
	return func(c *Converter) { c.cfg = cfg }
}

// New returns a Converter that submits documents to p.
func New(p ocr.Processor, opts ...Option) *Converter {
	c := &Converter{
		ocr: p,
		log: slog.Default(),
		out: io.Discard,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.errOut == nil {
		c.errOut = c.out
	}
	if c.cfg.Model == "" {
		c.cfg.Model = ocr.DefaultModel
	}
	return c
}

// Run converts a single job. Downloaded sources are removed when Run returns,
// on success or failure, unless the configuration keeps them.
func (c *Converter) Run(ctx context.Context, job types.ConversionJob) (Result, error) {
	log := c.log.With("source", job.Source.String())

	if checker, ok := c.ocr.(ocr.CredentialChecker); ok {
		if err := checker.CheckCredential(); err != nil {
			return Result{}, err
		}
	}

	src := job.Source.Path
	if job.Source.IsRemote() {
		path, err := c.fetch(ctx, job.Source.URL)
		if err != nil {
			return Result{}, err
		}
		fmt.Fprintf(c.out, "downloaded: %s\n", path)
		if !c.cfg.KeepDownloads {
			defer c.removeDownload(path, log)
		}
		src = path
		job.SingleFile = true
	}

	src, err := checkSource(src)
	if err != nil {
		return Result{}, err
	}

	outPath := job.OutputPath
	if outPath == "" {
		outPath, err = ResolveOutputPath(src, job.Format.Ext(), job.SingleFile, c.cfg.Overwrite)
		if err != nil {
			return Result{}, err
		}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", src, err)
	}

	log.Debug("submitting document", "bytes", len(data), "model", c.cfg.Model)
	ocrResult, err := c.ocr.Process(ctx, ocr.Document{Name: filepath.Base(src), Data: data}, ocr.Options{
		Model:         c.cfg.Model,
		IncludeImages: c.cfg.IncludeImages,
		ExtractHeader: job.ExtractHeader,
		ExtractFooter: job.ExtractFooter,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrOCRService, err)
	}

	pages, missing := selectPages(ocrResult.Pages, job.Pages)
	if len(missing) > 0 {
		log.Warn("requested pages are outside the document",
			"pages", pagerange.Format(missing), "pageCount", len(ocrResult.Pages))
		fmt.Fprintf(c.out, "  warning: pages %s not in document (%d pages)\n",
			pagerange.Format(missing), len(ocrResult.Pages))
	}

	content := joinPages(pages)
	if job.Format == types.FormatText {
		content = markup.ToPlainText(content)
	}

	if err := writeOutput(outPath, content, c.cfg.Overwrite == types.OverwriteAlways); err != nil {
		return Result{}, err
	}

	res := Result{
		Source:       src,
		OutputPath:   outPath,
		PageCount:    len(ocrResult.Pages),
		PagesWritten: len(pages),
		MissingPages: missing,
		CostUSD:      ledger.Cost(len(ocrResult.Pages)),
	}

	if c.cfg.IncludeImages {
		n, err := writeImages(src, pages)
		res.Images = n
		if err != nil {
			return res, err
		}
		if n > 0 {
			fmt.Fprintf(c.out, "  extracted %d image(s)\n", n)
		}
	}

	if c.ledger != nil {
		rec := ledger.NewRecord(filepath.Base(src), res.PageCount, outPath, c.now())
		if err := c.ledger.Record(ctx, rec); err != nil {
			log.Warn("could not record usage", "error", err)
			fmt.Fprintf(c.errOut, "  warning: usage not recorded (%v)\n", err)
		}
	}

	return res, nil
}

func (c *Converter) fetch(ctx context.Context, rawURL string) (string, error) {
	if c.fetcher == nil {
		return "", fmt.Errorf("%w: no downloader configured for %s", ErrDownload, rawURL)
	}
	fmt.Fprintf(c.out, "downloading: %s\n", rawURL)
	path, err := download.SaveTo(ctx, c.fetcher, rawURL, c.cfg.DownloadDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return path, nil
}

func (c *Converter) removeDownload(path string, log *slog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("could not remove downloaded file", "path", path, "error", err)
		return
	}
	log.Debug("removed downloaded file", "path", path)
}

// checkSource resolves src to an absolute path and verifies it is an
// existing PDF file.
func checkSource(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", src, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, abs)
	}
	if !discover.IsPDF(abs) {
		return "", fmt.Errorf("%w, got: %s", ErrSourceNotPDF, filepath.Base(abs))
	}
	return abs, nil
}

// ResolveOutputPath picks the destination for src. The default is src with
// its extension replaced by ext. Only single-file conversions look for an
// existing output: the suffix and prompt policies then choose the lowest free
// "{stem}_{n}{ext}", overwrite keeps the default, and never refuses with
// ErrOutputExists. Batch conversions always use the default, because
// discovery already dropped sources whose output exists.
func ResolveOutputPath(src, ext string, single bool, policy types.OverwritePolicy) (string, error) {
	candidate := discover.SiblingPath(src, ext)
	if !single {
		return candidate, nil
	}
	if _, err := os.Stat(candidate); err != nil {
		return candidate, nil
	}
	switch policy {
	case types.OverwriteAlways:
		return candidate, nil
	case types.OverwriteNever:
		return "", fmt.Errorf("%w: %s", ErrOutputExists, candidate)
	default:
		return discover.NextFreePath(candidate), nil
	}
}

// selectPages keeps the pages named in filter, in ascending page order. A nil
// filter keeps every page. Requested pages the document does not contain are
// returned as missing.
func selectPages(pages []types.Page, filter []int) (kept []types.Page, missing []int) {
	sorted := make([]types.Page, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	if filter == nil {
		return sorted, nil
	}

	byIndex := make(map[int]types.Page, len(sorted))
	for _, p := range sorted {
		byIndex[p.Index] = p
	}
	want := append([]int(nil), filter...)
	sort.Ints(want)
	for i, n := range want {
		if i > 0 && want[i-1] == n {
			continue
		}
		if p, ok := byIndex[n]; ok {
			kept = append(kept, p)
		} else {
			missing = append(missing, n)
		}
	}
	return kept, missing
}

func joinPages(pages []types.Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = pageContent(p)
	}
	return strings.Join(parts, pageSeparator)
}

// pageContent places an extracted header above the page body and an
// extracted footer below it. Pages without them are just their markdown.
func pageContent(p types.Page) string {
	if p.Header == "" && p.Footer == "" {
		return p.Markdown
	}
	var parts []string
	for _, s := range []string{p.Header, p.Markdown, p.Footer} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, pageSeparator)
}

// writeOutput writes content to path as UTF-8. Unless overwrite is set the
// file must not exist yet, so a file created by someone else after the path
// was chosen is reported instead of replaced.
func writeOutput(path, content string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %w: %s", ErrWrite, ErrOutputExists, path)
		}
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	_, writeErr := f.WriteString(content)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, closeErr)
	}
	return nil
}

// writeImages stores each page image beside src as "{stem}_{id}".
func writeImages(src string, pages []types.Page) (int, error) {
	dir := filepath.Dir(src)
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	count := 0
	for _, p := range pages {
		for i, img := range p.Images {
			path := filepath.Join(dir, imageFileName(stem, img.ID, p.Index, i))
			if err := os.WriteFile(path, img.Data, 0o644); err != nil {
				return count, fmt.Errorf("%w: image %s: %w", ErrWrite, path, err)
			}
			count++
		}
	}
	return count, nil
}

// imageFileName names an extracted image. Provider ids usually carry an
// extension ("img-0.jpeg"); bare ids get ".png".
func imageFileName(stem, id string, page, n int) string {
	id = filepath.Base(strings.TrimSpace(id))
	if id == "" || id == "." || id == string(filepath.Separator) {
		id = fmt.Sprintf("page%d_img%d", page, n)
	}
	if filepath.Ext(id) == "" {
		id += ".png"
	}
	return stem + "_" + id
}
