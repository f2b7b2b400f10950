package helpers

import "strings"

// NullIfBlank returns nil for an empty or whitespace-only string,
// otherwise a pointer to the trimmed value.
func NullIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Contains wraps s for a LIKE / ILIKE "contains" match.
func Contains(s string) string {
	return "%" + s + "%"
}

// Deref returns the pointed string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
