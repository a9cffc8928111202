//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts every unconverted PDF under dir to
// markdown.
func Convert(dir string) error {
	mg.Deps(Build)
	fmt.Printf("[convert] %s\n", dir)
	return sh.RunV(filepath.Join(binDir, binName), dir)
}

// Estimate builds the CLI and prints the OCR cost estimate for dir.
func Estimate(dir string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "estimate", dir)
}
