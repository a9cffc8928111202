// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr submits PDF documents to a remote OCR provider and returns the
// recognized pages as markdown.
package ocr

import (
	"context"
	"fmt"

	"github.com/pdiddy/pdf-ocr/internal/secrets"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// DefaultModel is the provider model used when none is configured.
const DefaultModel = "mistral-ocr-latest"

// ErrMissingCredential is returned when a client has no API key.
var ErrMissingCredential = secrets.ErrMissingCredential

// Document is the payload submitted for recognition.
type Document struct {
	// Name is the file name reported to the provider.
	Name string
	Data []byte
}

// Options tune a single OCR request.
type Options struct {
	Model         string
	IncludeImages bool
	// ExtractHeader and ExtractFooter are omitted from the request when nil.
	ExtractHeader *bool
	ExtractFooter *bool
}

// Processor runs OCR on one document. The Mistral client implements it;
// tests supply fakes.
type Processor interface {
	Process(ctx context.Context, doc Document, opts Options) (types.OCRResult, error)
}

// CredentialChecker is implemented by processors that can report a missing
// credential before any document is fetched or uploaded.
type CredentialChecker interface {
	CheckCredential() error
}

// APIError is a non-2xx provider response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: provider returned HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}
