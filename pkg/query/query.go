// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-shaped URL query values.
package query

import (
	"strings"
)

// StringSlice splits comma separated values into a trimmed, de-duplicated slice.
// Empty entries are dropped; first occurrence order is kept.
func StringSlice(values ...string) []string {
	var result []string
	seen := make(map[string]struct{})

	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			clean := strings.TrimSpace(part)
			if clean == "" {
				continue
			}
			if _, ok := seen[clean]; ok {
				continue
			}
			seen[clean] = struct{}{}
			result = append(result, clean)
		}
	}

	return result
}
