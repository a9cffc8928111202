// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-ocr/internal/convert"
	"github.com/pdiddy/pdf-ocr/internal/discover"
	"github.com/pdiddy/pdf-ocr/internal/download"
	"github.com/pdiddy/pdf-ocr/internal/ledger"
	"github.com/pdiddy/pdf-ocr/internal/ocr"
	"github.com/pdiddy/pdf-ocr/internal/pagerange"
	"github.com/pdiddy/pdf-ocr/internal/secrets"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

const (
	dotenvPath = ".env"
	secretsDir = ".secrets/"
)

var (
	headerFlag *optionalBool
	footerFlag *optionalBool
)

// flagKeys binds root flags to viper keys so the config file and PDF_OCR_*
// variables can supply them.
var flagKeys = map[string]string{
	"model":        "model",
	"overwrite":    "overwrite",
	"workers":      "workers",
	"images":       "images",
	"keep":         "keep",
	"download-dir": "download_dir",
	"track":        "ledger.enabled",
	"track-file":   "ledger.extra_path",
	"track-format": "ledger.format",
}

func init() {
	f := rootCmd.Flags()
	f.String("url", "", "download and convert a remote PDF (http, https, or gs://)")
	f.String("model", ocr.DefaultModel, "OCR model")
	f.String("api-key", "", "Mistral API key (overrides MISTRAL_API_KEY)")
	f.Bool("txt", false, "write plain text (.txt)")
	f.Bool("md", false, "write markdown (.md, default)")
	f.String("pages", "", `pages to keep, e.g. "1,3,5-7"`)
	headerFlag = addOptionalBool(f, "header", "ask the provider to extract page headers")
	footerFlag = addOptionalBool(f, "footer", "ask the provider to extract page footers")
	f.Bool("keep", false, "keep PDFs downloaded for --url")
	f.Bool("images", false, "extract embedded images next to the output")
	f.Bool("track", false, "append usage to the default ledger")
	f.String("track-file", "", "also append usage to this ledger (implies --track)")
	f.String("track-format", string(types.LedgerText), "format of --track-file: csv, txt, or sqlite")
	f.String("overwrite", string(types.OverwritePrompt), "existing output for a single file: prompt, overwrite, never, or suffix")
	f.Int("workers", 1, "number of files converted concurrently")
	f.String("download-dir", ".", "directory for PDFs downloaded with --url")

	rootCmd.MarkFlagsMutuallyExclusive("txt", "md")

	for name, key := range flagKeys {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	rawURL, _ := cmd.Flags().GetString("url")
	if (len(args) == 0) == (rawURL == "") {
		return fmt.Errorf("provide exactly one input: a PDF file, a directory, or --url")
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	format, err := formatFromFlags(cmd, cfg.Conversion.Format)
	if err != nil {
		return err
	}
	cfg.Conversion.Format = format

	base := types.ConversionJob{
		Format:        format,
		ExtractHeader: headerFlag.Ptr(),
		ExtractFooter: footerFlag.Ptr(),
	}
	if spec, _ := cmd.Flags().GetString("pages"); spec != "" {
		set, err := pagerange.Parse(spec)
		if err != nil {
			return err
		}
		base.Pages = set.Sorted()
	}

	explicitKey, _ := cmd.Flags().GetString("api-key")
	cfg.OCR.APIKey, err = secrets.ResolveAPIKey(secrets.Sources{
		Explicit:   explicitKey,
		DotenvPath: dotenvPath,
		SecretsDir: secretsDir,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var jobs []types.ConversionJob
	if rawURL != "" {
		job := base
		job.Source = types.InputSpec{URL: rawURL}
		job.SingleFile = true
		jobs = append(jobs, job)
	} else {
		jobs, err = planLocal(cmd, args[0], base, &cfg.Conversion)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}
	}

	recorder, err := openLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	if recorder != nil {
		defer recorder.Close()
	}

	gcs := &download.GCSFetcher{}
	defer gcs.Close()
	fetcher := &download.Router{
		HTTP: &download.HTTPFetcher{Client: &http.Client{Timeout: cfg.OCR.Timeout}, UserAgent: defaultUserAgent},
		GCS:  gcs,
	}

	opts := []convert.Option{
		convert.WithConfig(cfg.Conversion),
		convert.WithFetcher(fetcher),
		convert.WithLogger(slog.Default()),
		convert.WithOutput(out, cmd.ErrOrStderr()),
	}
	if recorder != nil {
		opts = append(opts, convert.WithLedger(recorder))
	}
	conv := convert.New(ocr.NewMistralClient(cfg.OCR), opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if len(jobs) == 1 && jobs[0].SingleFile {
		return runSingle(ctx, conv, jobs[0], out, cmd.ErrOrStderr())
	}

	conv.RunBatch(ctx, jobs)
	return nil
}

// runSingle converts one file. A missing credential is fatal; any other
// failure belongs to the file and is reported without failing the run.
func runSingle(ctx context.Context, conv *convert.Converter, job types.ConversionJob, out, errOut io.Writer) error {
	res, err := conv.Run(ctx, job)
	if errors.Is(err, convert.ErrMissingCredential) {
		return err
	}
	if err != nil {
		name := job.Source.URL
		if !job.Source.IsRemote() {
			name = filepath.Base(job.Source.Path)
		}
		slog.Error("conversion failed", "file", name, "error", err)
		fmt.Fprintf(errOut, "failed:  %s (%v)\n", name, err)
		return nil
	}
	fmt.Fprintf(out, "converted: %s -> %s (%d pages, $%.4f)\n",
		filepath.Base(res.Source), res.OutputPath, res.PageCount, res.CostUSD)
	return nil
}

// planLocal discovers the PDFs under input and resolves their outputs. For a
// single file under the prompt policy it asks before converting again; a
// "no" returns no jobs.
func planLocal(cmd *cobra.Command, input string, base types.ConversionJob, cfg *types.ConversionConfig) ([]types.ConversionJob, error) {
	out := cmd.OutOrStdout()

	found, err := discover.Discover(input, base.Format.Ext())
	if err != nil {
		return nil, err
	}
	if found.Skipped > 0 {
		fmt.Fprintf(out, "skipped: %d PDF(s) already converted\n", found.Skipped)
	}
	if !found.Single {
		fmt.Fprintf(out, "found: %d PDF(s), %d to convert\n", found.Found, len(found.Files))
	}

	policy := cfg.Overwrite
	if found.Single && policy == types.OverwritePrompt {
		existing := discover.SiblingPath(found.Files[0], base.Format.Ext())
		if _, err := os.Stat(existing); err == nil {
			ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Output %s already exists. Re-process it? (y/N) ", existing))
			if err != nil {
				return nil, err
			}
			if !ok {
				fmt.Fprintf(out, "skipped: %s (already exists)\n", filepath.Base(found.Files[0]))
				return nil, nil
			}
		}
		policy = types.OverwriteSuffix
	}

	jobs, err := convert.PlanJobs(found, base, policy)
	if errors.Is(err, convert.ErrOutputExists) {
		fmt.Fprintf(out, "skipped: %s (%v)\n", filepath.Base(found.Files[0]), err)
		return nil, nil
	}
	return jobs, err
}

// confirm asks question on out and reads a y/N answer from in. Anything other
// than y or yes, including end of input, is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// formatFromFlags lets --txt or --md override the configured format.
func formatFromFlags(cmd *cobra.Command, configured types.Format) (types.Format, error) {
	txt, _ := cmd.Flags().GetBool("txt")
	md, _ := cmd.Flags().GetBool("md")
	switch {
	case txt && md:
		return "", fmt.Errorf("--txt and --md are mutually exclusive")
	case txt:
		return types.FormatText, nil
	case md:
		return types.FormatMarkdown, nil
	}
	return configured, nil
}

// openLedger returns nil when tracking is off. The default CSV ledger is
// always written when tracking is on; an extra ledger is added alongside it.
func openLedger(cfg types.LedgerConfig) (ledger.Recorder, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	primary, err := ledger.Open(cfg.Path, types.LedgerCSV)
	if err != nil {
		return nil, err
	}
	if cfg.ExtraPath == "" || cfg.ExtraPath == cfg.Path {
		return primary, nil
	}
	extra, err := ledger.Open(cfg.ExtraPath, cfg.ExtraFormat)
	if err != nil {
		primary.Close()
		return nil, err
	}
	return ledger.Multi{primary, extra}, nil
}
