// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pagerange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []int
	}{
		{"mixed list", "1,8,9,11-20", []int{1, 8, 9, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}},
		{"range then page", "1-5,10", []int{1, 2, 3, 4, 5, 10}},
		{"single page", "7", []int{7}},
		{"whitespace ignored", " 2 , 4 - 5 ", []int{2, 4, 5}},
		{"duplicates collapse", "3,1-3,2", []int{1, 2, 3}},
		{"degenerate range", "4-4", []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Sorted())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantErr   error
		wantToken string
	}{
		{"negative number", "-1", ErrPageNumbersMustBePositive, "-1"},
		{"negative in list", "1,-3", ErrPageNumbersMustBePositive, "-3"},
		{"zero", "0", ErrPageNumbersMustBePositive, "0"},
		{"zero range start", "0-4", ErrPageNumbersMustBePositive, "0-4"},
		{"start after end", "5-2", ErrInvalidRangeFormat, "5-2"},
		{"double dash", "1--2", ErrInvalidRangeFormat, "1--2"},
		{"three parts", "1-2-3", ErrInvalidRangeFormat, "1-2-3"},
		{"open range", "5-", ErrInvalidRangeFormat, "5-"},
		{"not a number", "abc", ErrInvalidRangeFormat, "abc"},
		{"empty token", "1,,2", ErrInvalidRangeFormat, ""},
		{"empty spec", "", ErrInvalidRangeFormat, ""},
		{"huge range", "1-1000000", ErrInvalidRangeFormat, "1-1000000"},
		{"plus sign", "+3", ErrInvalidRangeFormat, "+3"},
		{"plus sign in range", "1-+3", ErrInvalidRangeFormat, "1-+3"},
		{"embedded space", "1 2", ErrInvalidRangeFormat, "1 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidRangeSpec)

			var rerr *RangeError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.wantToken, rerr.Token)
		})
	}
}

func TestSetContains(t *testing.T) {
	s, err := Parse("2-3")
	require.NoError(t, err)
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(1))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		pages []int
		want  string
	}{
		{nil, ""},
		{[]int{1}, "1"},
		{[]int{1, 8, 9, 11, 12, 13}, "1,8-9,11-13"},
		{[]int{1, 2, 3, 4, 5, 10}, "1-5,10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.pages))
	}
}
