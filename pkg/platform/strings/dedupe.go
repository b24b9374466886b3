// Package strings holds small helpers for list-valued settings.
package strings

import (
	"strings"
)

// NormalizeList trims each entry and drops blanks and repeats, keeping the
// first occurrence. Entries that differ only in case count as repeats, which
// suits host names and broker addresses.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
