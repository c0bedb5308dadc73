package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// SameMail reports whether two mail addresses are equal once trimmed and case-folded.
func SameMail(a, b string) bool {
	a, b = CleanString(a), CleanString(b)
	return a != "" && strings.EqualFold(a, b)
}
