// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagerange parses compact page selections such as "1,8,9,11-20".
package pagerange

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxSpan bounds a single A-B range so a typo like "1-100000000" cannot
// allocate an enormous set.
const maxSpan = 100000

var (
	// ErrInvalidRangeSpec is the parent of every parse failure.
	ErrInvalidRangeSpec = errors.New("invalid page range")
	// ErrInvalidRangeFormat reports a token that is neither N nor A-B with A <= B.
	ErrInvalidRangeFormat = fmt.Errorf("%w: invalid range format", ErrInvalidRangeSpec)
	// ErrPageNumbersMustBePositive reports a zero or negative page number.
	ErrPageNumbersMustBePositive = fmt.Errorf("%w: page numbers must be positive", ErrInvalidRangeSpec)
)

// RangeError carries the offending token.
type RangeError struct {
	Token string
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Token)
}

func (e *RangeError) Unwrap() error { return e.Err }

// Set is a set of 1-based page numbers.
type Set map[int]struct{}

// Contains reports whether page n is selected.
func (s Set) Contains(n int) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the selected pages in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Parse reads a comma-separated list of page numbers and inclusive ranges.
// Whitespace around tokens is ignored and duplicates collapse.
func Parse(spec string) (Set, error) {
	set := Set{}
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if err := addToken(set, token); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func addToken(set Set, token string) error {
	if token == "" {
		return &RangeError{Token: token, Err: ErrInvalidRangeFormat}
	}
	// A leading minus is a negative number, not a range with a missing start.
	if strings.HasPrefix(token, "-") {
		return &RangeError{Token: token, Err: ErrPageNumbersMustBePositive}
	}

	if !strings.Contains(token, "-") {
		n, err := parsePage(token)
		if err != nil {
			return err
		}
		set[n] = struct{}{}
		return nil
	}

	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return &RangeError{Token: token, Err: ErrInvalidRangeFormat}
	}
	start, err := parsePage(strings.TrimSpace(parts[0]))
	if err != nil {
		return &RangeError{Token: token, Err: errors.Unwrap(err)}
	}
	end, err := parsePage(strings.TrimSpace(parts[1]))
	if err != nil {
		return &RangeError{Token: token, Err: errors.Unwrap(err)}
	}
	if start > end || end-start >= maxSpan {
		return &RangeError{Token: token, Err: ErrInvalidRangeFormat}
	}
	for n := start; n <= end; n++ {
		set[n] = struct{}{}
	}
	return nil
}

// parsePage accepts only a run of ASCII digits; signs and other characters
// are a format error.
func parsePage(token string) (int, error) {
	if !allDigits(token) {
		return 0, &RangeError{Token: token, Err: ErrInvalidRangeFormat}
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, &RangeError{Token: token, Err: ErrInvalidRangeFormat}
	}
	if n < 1 {
		return 0, &RangeError{Token: token, Err: ErrPageNumbersMustBePositive}
	}
	return n, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Format renders ascending pages back into compact form, e.g. "1,8-9,11-20".
func Format(pages []int) string {
	var parts []string
	for i := 0; i < len(pages); {
		j := i
		for j+1 < len(pages) && pages[j+1] == pages[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(pages[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", pages[i], pages[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
