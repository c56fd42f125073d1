// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package blog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evkarin/lumen/internal/blog"
)

/*
TestExcerpt covers tag stripping, whitespace collapsing, and the word-aware
truncation rules.
*/
func TestExcerpt(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		maxLength int
		want      string
	}{
		{
			name:      "strips_tags",
			content:   "<p>Hello <strong>world</strong></p>",
			maxLength: 100,
			want:      "Hello world",
		},
		{
			name:      "collapses_whitespace",
			content:   "one\n\n  two\tthree",
			maxLength: 100,
			want:      "one two three",
		},
		{
			name:      "short_content_verbatim",
			content:   "exactly this",
			maxLength: 12,
			want:      "exactly this",
		},
		{
			name:      "cuts_at_word_boundary",
			content:   "the quick brown fox jumps",
			maxLength: 12,
			want:      "the quick...",
		},
		{
			name:      "empty_content",
			content:   "",
			maxLength: 100,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blog.Excerpt(tt.content, tt.maxLength))
		})
	}
}

/*
TestExcerpt_NoSpaceHardCut verifies the fallback when no space precedes the
limit: a hard character cut plus the ellipsis.
*/
func TestExcerpt_NoSpaceHardCut(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := blog.Excerpt(long, 10)
	assert.Equal(t, strings.Repeat("x", 10)+"...", got)
}

/*
TestExcerptOrExplicit verifies that an author-written excerpt wins over the
derived one.
*/
func TestExcerptOrExplicit(t *testing.T) {
	post := &blog.BlogPost{Content: "<p>derived from content</p>"}
	assert.Equal(t, "derived from content", blog.ExcerptOrExplicit(post))

	post.Excerpt = "hand written"
	assert.Equal(t, "hand written", blog.ExcerptOrExplicit(post))
}
