// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Image is an embedded picture returned with a page.
type Image struct {
	// ID is the provider identifier, e.g. "img-0.jpeg".
	ID   string `json:"id" yaml:"id"`
	Data []byte `json:"-" yaml:"-"`
}

// Page is one OCR'd page.
type Page struct {
	// Index is 1-based.
	Index    int     `json:"index" yaml:"index"`
	Markdown string  `json:"markdown" yaml:"markdown"`
	Header   string  `json:"header,omitempty" yaml:"header,omitempty"`
	Footer   string  `json:"footer,omitempty" yaml:"footer,omitempty"`
	Images   []Image `json:"images,omitempty" yaml:"images,omitempty"`
}

// OCRResult holds the ordered pages for one document.
type OCRResult struct {
	Model string `json:"model" yaml:"model"`
	Pages []Page `json:"pages" yaml:"pages"`
}
