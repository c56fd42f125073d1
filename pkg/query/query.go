// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package query parses comma-separated URL query parameter values.
package query

import "strings"

// StringSlice splits a comma-separated query value into trimmed, non-empty
// parts. An empty input yields nil.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
