// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfinfo inspects local PDFs without sending them to the provider.
package pdfinfo

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating its config directory under the user's home.
	api.DisableConfigDir()
}

// PageCount returns the number of pages in the PDF at path. Validation is
// relaxed so slightly malformed scans still report a count.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("counting pages in %s: %w", path, err)
	}
	return n, nil
}
