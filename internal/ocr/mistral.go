// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/pdf-ocr/internal/httputil"
	"github.com/pdiddy/pdf-ocr/pkg/types"
)

// DefaultBaseURL is the Mistral API root.
const DefaultBaseURL = "https://api.mistral.ai"

// signedURLExpiryHours is how long the uploaded file stays retrievable by the
// OCR endpoint.
const signedURLExpiryHours = 1

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 2048

// MistralClient implements Processor against the Mistral OCR API: the PDF is
// uploaded, a short-lived signed URL is requested for it, the OCR endpoint is
// pointed at that URL, and the uploaded file is deleted afterwards.
type MistralClient struct {
	APIKey    string
	BaseURL   string
	UserAgent string
	Client    *http.Client
	// MaxRetries bounds retries on HTTP 429; see httputil.DoWithRetry.
	MaxRetries int
}

// NewMistralClient builds a client from cfg, applying defaults.
func NewMistralClient(cfg types.OCRConfig) *MistralClient {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &MistralClient{
		APIKey:     cfg.APIKey,
		BaseURL:    strings.TrimRight(base, "/"),
		UserAgent:  cfg.UserAgent,
		Client:     &http.Client{Timeout: cfg.Timeout},
		MaxRetries: cfg.MaxRetries,
	}
}

type fileResponse struct {
	ID string `json:"id"`
}

type signedURLResponse struct {
	URL string `json:"url"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
	ExtractHeader      *bool       `json:"extract_header,omitempty"`
	ExtractFooter      *bool       `json:"extract_footer,omitempty"`
}

type ocrImage struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`
}

type ocrPage struct {
	Index    int        `json:"index"`
	Markdown string     `json:"markdown"`
	Header   string     `json:"header"`
	Footer   string     `json:"footer"`
	Images   []ocrImage `json:"images"`
}

type ocrResponse struct {
	Model string    `json:"model"`
	Pages []ocrPage `json:"pages"`
}

// CheckCredential reports ErrMissingCredential when no API key is set.
func (c *MistralClient) CheckCredential() error {
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// Process uploads doc, runs OCR on it, and returns pages indexed from 1.
func (c *MistralClient) Process(ctx context.Context, doc Document, opts Options) (types.OCRResult, error) {
	if err := c.CheckCredential(); err != nil {
		return types.OCRResult{}, err
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	fileID, err := c.upload(ctx, doc)
	if err != nil {
		return types.OCRResult{}, err
	}
	defer c.deleteFile(ctx, fileID)

	signed, err := c.signedURL(ctx, fileID)
	if err != nil {
		return types.OCRResult{}, err
	}

	body := ocrRequest{
		Model:              model,
		Document:           ocrDocument{Type: "document_url", DocumentURL: signed},
		IncludeImageBase64: opts.IncludeImages,
		ExtractHeader:      opts.ExtractHeader,
		ExtractFooter:      opts.ExtractFooter,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return types.OCRResult{}, fmt.Errorf("marshaling OCR request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/ocr", bytes.NewReader(payload))
	if err != nil {
		return types.OCRResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp ocrResponse
	if err := c.do(ctx, "ocr", req, &resp); err != nil {
		return types.OCRResult{}, err
	}
	return convertResponse(resp, model)
}

// upload sends the PDF as multipart form data with purpose=ocr.
func (c *MistralClient) upload(ctx context.Context, doc Document) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	part, err := mw.CreateFormFile("file", doc.Name)
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/files", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp fileResponse
	if err := c.do(ctx, "upload", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("upload: provider returned no file id")
	}
	return resp.ID, nil
}

func (c *MistralClient) signedURL(ctx context.Context, fileID string) (string, error) {
	path := fmt.Sprintf("/v1/files/%s/url?expiry=%d", url.PathEscape(fileID), signedURLExpiryHours)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var resp signedURLResponse
	if err := c.do(ctx, "signed url", req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("signed url: provider returned an empty URL")
	}
	return resp.URL, nil
}

// deleteFile removes the uploaded document. Failures are logged only; the
// OCR result is already in hand.
func (c *MistralClient) deleteFile(ctx context.Context, fileID string) {
	dctx := context.WithoutCancel(ctx)
	req, err := c.newRequest(dctx, http.MethodDelete, "/v1/files/"+url.PathEscape(fileID), nil)
	if err != nil {
		return
	}
	if err := c.do(dctx, "delete file", req, nil); err != nil {
		slog.Debug("could not delete uploaded file", "fileID", fileID, "error", err)
	}
}

func (c *MistralClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return req, nil
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (c *MistralClient) do(ctx context.Context, op string, req *http.Request, out any) error {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// convertResponse maps provider pages (0-based) onto 1-based pages and
// decodes embedded images.
func convertResponse(resp ocrResponse, model string) (types.OCRResult, error) {
	result := types.OCRResult{Model: resp.Model, Pages: make([]types.Page, 0, len(resp.Pages))}
	if result.Model == "" {
		result.Model = model
	}
	for _, p := range resp.Pages {
		page := types.Page{
			Index:    p.Index + 1,
			Markdown: p.Markdown,
			Header:   p.Header,
			Footer:   p.Footer,
		}
		for _, img := range p.Images {
			if img.ImageBase64 == "" {
				continue
			}
			data, err := decodeImage(img.ImageBase64)
			if err != nil {
				return types.OCRResult{}, fmt.Errorf("decoding image %s on page %d: %w", img.ID, page.Index, err)
			}
			page.Images = append(page.Images, types.Image{ID: img.ID, Data: data})
		}
		result.Pages = append(result.Pages, page)
	}
	return result, nil
}

// decodeImage accepts raw base64 or a data URI ("data:image/jpeg;base64,...").
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
