// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package pointer removes the boilerplate of taking addresses of literals,
// which comes up constantly with optional JSON fields modeled as pointers.
package pointer

// To returns a pointer to v. Handy for filling optional struct fields
// inline: pointer.To(time.Now()).
func To[T any](v T) *T {
	return &v
}
