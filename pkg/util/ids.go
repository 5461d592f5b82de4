package util

import (
	"strings"
)

// NormalizeID canonicalizes a subject identifier for comparison. IDs arrive
// from different sources as numbers or padded strings, so everything is
// compared as a trimmed string.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// ContainsID reports whether id is present in ids, comparing normalized forms.
func ContainsID(ids []string, id string) bool {
	want := NormalizeID(id)
	for _, candidate := range ids {
		if NormalizeID(candidate) == want {
			return true
		}
	}
	return false
}

// IntersectsIDs reports whether any element of a is present in b.
func IntersectsIDs(a, b []string) bool {
	for _, id := range a {
		if ContainsID(b, id) {
			return true
		}
	}
	return false
}
