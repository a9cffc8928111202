// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches remote PDFs into the local filesystem so they can
// be converted like local inputs.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdf-ocr/internal/discover"
)

// FallbackName is used when the URL path does not end in a PDF file name.
const FallbackName = "downloaded.pdf"

// Fetcher opens a remote document for reading.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// HTTPFetcher downloads http and https URLs. Redirects follow the
// http.Client defaults.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// Fetch issues a GET and returns the body of a 200 response.
func (h *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// Router dispatches on URL scheme: gs:// goes to GCS, everything else to HTTP.
type Router struct {
	HTTP Fetcher
	GCS  Fetcher
}

// Fetch implements Fetcher.
func (r *Router) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if r.HTTP == nil {
			return nil, fmt.Errorf("no HTTP fetcher configured")
		}
		return r.HTTP.Fetch(ctx, rawURL)
	case "gs":
		if r.GCS == nil {
			return nil, fmt.Errorf("no GCS fetcher configured")
		}
		return r.GCS.Fetch(ctx, rawURL)
	}
	return nil, fmt.Errorf("unsupported URL scheme %q in %s", u.Scheme, rawURL)
}

// FileName derives a local file name from the last URL path segment, falling
// back to FallbackName when it is missing or not a PDF.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FallbackName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || !discover.IsPDF(name) {
		return FallbackName
	}
	return name
}

// SaveTo fetches rawURL into dir under FileName(rawURL), choosing a "_n"
// suffixed name when that file already exists. The body is written to a
// temporary file and renamed into place on success. It returns the absolute
// path of the saved file.
func SaveTo(ctx context.Context, f Fetcher, rawURL, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory %s: %w", dir, err)
	}

	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	dest := discover.NextFreePath(filepath.Join(dir, FileName(rawURL)))
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return dest, nil
	}
	return abs, nil
}

// splitGCS parses gs://bucket/object.
func splitGCS(rawURL string) (bucket, object string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	object = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "gs" || u.Host == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URL %q: want gs://bucket/object", rawURL)
	}
	return u.Host, object, nil
}
