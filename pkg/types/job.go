// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdf-ocr pipeline:
// conversion jobs, OCR results, tracking records, and stage configuration.
package types

import (
	"fmt"
	"time"
)

// Format selects the output representation written for each PDF.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// Ext returns the output file extension including the leading dot.
func (f Format) Ext() string {
	if f == FormatText {
		return ".txt"
	}
	return ".md"
}

// ParseFormat accepts "md", "markdown", "txt", or "text".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported format %q: use md or txt", s)
}

// InputSpec names one source document. Exactly one of Path and URL is set.
type InputSpec struct {
	// Path is a local filesystem path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// URL is an http(s) or gs:// location downloaded before OCR.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// IsRemote reports whether the source must be downloaded first.
func (s InputSpec) IsRemote() bool { return s.URL != "" }

// String returns the path or URL.
func (s InputSpec) String() string {
	if s.IsRemote() {
		return s.URL
	}
	return s.Path
}

// ConversionJob describes the work for one source document. Jobs are built
// from the discovery worklist and consumed once by the converter.
type ConversionJob struct {
	Source InputSpec `json:"source" yaml:"source"`

	// OutputPath is the resolved destination. Empty for remote sources until
	// the download lands and the path can be derived from it.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	Format Format `json:"format" yaml:"format"`

	// Pages holds the selected 1-based page numbers in ascending order.
	// Nil selects every page.
	Pages []int `json:"pages,omitempty" yaml:"pages,omitempty"`

	// ExtractHeader and ExtractFooter are forwarded to the provider when set.
	ExtractHeader *bool `json:"extract_header,omitempty" yaml:"extract_header,omitempty"`
	ExtractFooter *bool `json:"extract_footer,omitempty" yaml:"extract_footer,omitempty"`

	// SingleFile marks a user-specified single input, which enables numeric
	// disambiguation of the output name.
	SingleFile bool `json:"single_file" yaml:"single_file"`
}

// TrackingRecord is one ledger row. Records are appended, never rewritten.
type TrackingRecord struct {
	Filename    string    `json:"filename" yaml:"filename"`
	PageCount   int       `json:"page_count" yaml:"page_count"`
	ProcessedAt time.Time `json:"processing_date" yaml:"processing_date"`
	CostUSD     float64   `json:"cost_usd" yaml:"cost_usd"`
	OutputPath  string    `json:"output_path" yaml:"output_path"`
}
