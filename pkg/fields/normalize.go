// Package fields maps free-form field names onto the canonical fact key
// vocabulary and carries the field definitions used for extraction.
package fields

import "strings"

// Normalize canonicalizes a free-form field name for comparison: lower-case,
// trimmed, with underscore and dash separators folded to single spaces.
// Pure and total; two names that normalize identically are textually
// equivalent for matching purposes.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeValue folds a fact value for equality comparison (lower-case,
// trimmed). Used by the conflict resolver and the user-edit no-op check.
func NormalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
