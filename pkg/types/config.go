// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdf-ocr/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OCRConfig holds settings for the OCR provider client.
type OCRConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the provider model name (default "mistral-ocr-latest").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the provider API root (default "https://api.mistral.ai").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates against the provider. Never written to config dumps.
	APIKey string `json:"-" yaml:"-"`

	// MaxRetries bounds back-off retries on HTTP 429 responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LedgerFormat selects the tracking ledger encoding.
type LedgerFormat string

const (
	LedgerCSV    LedgerFormat = "csv"
	LedgerText   LedgerFormat = "txt"
	LedgerSQLite LedgerFormat = "sqlite"
)

// ParseLedgerFormat validates a ledger format name.
func ParseLedgerFormat(s string) (LedgerFormat, error) {
	switch f := LedgerFormat(s); f {
	case LedgerCSV, LedgerText, LedgerSQLite:
		return f, nil
	}
	return "", fmt.Errorf("unsupported ledger format %q: use csv, txt, or sqlite", s)
}

// LedgerConfig holds settings for cost tracking.
type LedgerConfig struct {
	// Enabled turns on the default CSV ledger.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the default ledger location (default "ocr_usage_tracking.csv").
	Path string `json:"path" yaml:"path"`

	// ExtraPath is an optional second ledger written alongside the default one.
	ExtraPath string `json:"extra_path,omitempty" yaml:"extra_path,omitempty"`

	// ExtraFormat is the encoding of ExtraPath (default txt).
	ExtraFormat LedgerFormat `json:"extra_format,omitempty" yaml:"extra_format,omitempty"`
}

// OverwritePolicy decides what happens when a single-file conversion would
// land on an existing output.
type OverwritePolicy string

const (
	// OverwritePrompt asks on the terminal, then suffixes on "yes".
	OverwritePrompt OverwritePolicy = "prompt"
	// OverwriteAlways replaces the existing output.
	OverwriteAlways OverwritePolicy = "overwrite"
	// OverwriteNever skips the conversion.
	OverwriteNever OverwritePolicy = "never"
	// OverwriteSuffix writes to {stem}_{n}{ext} with the lowest free n.
	OverwriteSuffix OverwritePolicy = "suffix"
)

// ParseOverwritePolicy validates a policy name.
func ParseOverwritePolicy(s string) (OverwritePolicy, error) {
	switch p := OverwritePolicy(s); p {
	case OverwritePrompt, OverwriteAlways, OverwriteNever, OverwriteSuffix:
		return p, nil
	}
	return "", fmt.Errorf("unsupported overwrite policy %q: use prompt, overwrite, never, or suffix", s)
}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Model is the OCR model requested for each document.
	Model string `json:"model" yaml:"model"`

	// Format is the default output format.
	Format Format `json:"format" yaml:"format"`

	// Overwrite is applied to single-file conversions whose output exists.
	Overwrite OverwritePolicy `json:"overwrite" yaml:"overwrite"`

	// IncludeImages requests embedded images and writes them beside the output.
	IncludeImages bool `json:"include_images" yaml:"include_images"`

	// KeepDownloads retains PDFs fetched for remote inputs.
	KeepDownloads bool `json:"keep_downloads" yaml:"keep_downloads"`

	// DownloadDir receives PDFs fetched for remote inputs (default ".").
	DownloadDir string `json:"download_dir" yaml:"download_dir"`

	// Workers bounds concurrent jobs in a batch (default 1, sequential).
	Workers int `json:"workers" yaml:"workers"`
}

// Config groups every stage configuration for the CLI.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger"`
}
