// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup turns OCR markdown into normalized plain text.
package markup

import (
	"regexp"
	"strings"
)

var (
	imageRef   = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkRef    = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	markerRun  = regexp.MustCompile("[#*_`~]+")
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// ToPlainText strips lightweight markdown from content. Image references are
// dropped, links keep their text, emphasis and heading markers are removed,
// runs of three or more newlines collapse to one blank line, and the result
// is trimmed.
//
// The transform is applied until it reaches a fixed point, so marker removal
// that happens to expose new link syntax is handled in the same call and
// ToPlainText(ToPlainText(x)) == ToPlainText(x) holds for every input.
func ToPlainText(content string) string {
	for {
		next := normalize(content)
		if next == content {
			return next
		}
		content = next
	}
}

// normalize runs one pass of the five ordered rewrites. Each rewrite either
// leaves its input alone or makes it strictly shorter, which bounds the
// fixed-point loop in ToPlainText.
func normalize(s string) string {
	s = imageRef.ReplaceAllString(s, "")
	s = linkRef.ReplaceAllString(s, "$1")
	s = markerRun.ReplaceAllString(s, "")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
