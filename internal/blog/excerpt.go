// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package blog

import (
	"regexp"
	"strings"

	"github.com/evkarin/lumen/internal/platform/constants"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Excerpt derives a plain-text preview from HTML content: tags stripped,
// whitespace collapsed, cut to at most maxLength characters. Cuts land on
// the last space before the limit when one exists, and an ellipsis marks
// truncation. A non-positive maxLength falls back to the default length.
func Excerpt(content string, maxLength int) string {
	if maxLength < 1 {
		maxLength = constants.DefaultExcerptLength
	}

	text := htmlTagPattern.ReplaceAllString(content, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := string(runes[:maxLength])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}

	return strings.TrimSpace(cut) + "..."
}

// ExcerptOrExplicit prefers the author-written excerpt and derives one from
// the content otherwise.
func ExcerptOrExplicit(post *BlogPost) string {
	if post.Excerpt != "" {
		return post.Excerpt
	}
	return Excerpt(post.Content, constants.DefaultExcerptLength)
}
