// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evkarin/lumen/pkg/slug"
)

/*
TestFrom covers the normalization rules: lowercasing, diacritic stripping,
separator collapsing, and edge trimming.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Morning Fog", "morning-fog"},
		{"diacritics", "Café au Laît", "cafe-au-lait"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"collapse_separators", "a  --  b", "a-b"},
		{"trim_edges", "  -dolomites-  ", "dolomites"},
		{"digits_kept", "Top 10 Lenses of 2026", "top-10-lenses-of-2026"},
		{"empty", "", ""},
		{"only_symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestDerive verifies title-based slug derivation, including the length cap.
*/
func TestDerive(t *testing.T) {
	// 1. Short titles pass through From unchanged.
	assert.Equal(t, "chasing-golden-hour", slug.Derive("Chasing Golden Hour"))

	// 2. Long titles are cut at the cap with no trailing hyphen.
	long := slug.Derive("A very long meandering title that keeps going well past any reasonable slug length limit")
	assert.LessOrEqual(t, len(long), slug.MaxLength)
	assert.NotEqual(t, byte('-'), long[len(long)-1])
}

/*
TestDerive_Deterministic verifies that derivation is a pure function of its
input: repeated calls yield identical slugs.
*/
func TestDerive_Deterministic(t *testing.T) {
	first := slug.Derive("Chasing Golden Hour in the Dolomites")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, slug.Derive("Chasing Golden Hour in the Dolomites"))
	}
}
