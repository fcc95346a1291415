package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Next returns the next free record ID: one more than the larger of last (the
// highest ID ever issued) and the largest ID in items. IDs of deleted records
// are never handed out again as long as last is kept. Nothing issued and an
// empty slice yields 1.
func Next[T any](last int64, items []T, idOf func(T) int64) int64 {
	maxID := last
	for _, item := range items {
		if v := idOf(item); v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}

// Parse parses a positive record ID such as a CLI argument.
// kind names the record type in the error ("student", "account", ...).
func Parse(kind, s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q: %w", kind, s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be positive", kind, s)
	}
	return v, nil
}

// Format renders an ID for CSV and display. Zero renders as empty.
func Format(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}
