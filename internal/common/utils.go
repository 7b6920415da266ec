package common

import "strings"

// ContainsFold reports whether sub is within s, ignoring case.
// An empty sub always matches.
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// HasAnyFold returns true if s contains any of the substrings, ignoring case.
func HasAnyFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if ContainsFold(s, sub) {
			return true
		}
	}
	return false
}
