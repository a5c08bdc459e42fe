package session

import "strings"

// Grade compares a submitted answer against the expected one. Both sides are
// trimmed and case-folded before an exact comparison; there is no partial
// credit. A missing expected answer grades every submission as incorrect.
func Grade(submitted, expected string) bool {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(submitted), expected)
}
