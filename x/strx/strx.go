package strx

import "strings"

// Coalesce returns s if non-empty, otherwise d.
func Coalesce(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// Norm lower-cases and trims s; command payloads are matched in this form.
func Norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
