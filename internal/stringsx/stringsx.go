package stringsx

import (
	"html"
	"regexp"
	"strings"
)

// Clip returns at most max runes of s.
// If max <= 0, an empty string is returned.
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Normalize trims spaces and converts a string to lower case.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsEmpty reports whether s is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ContainsFold reports whether lowerSub is within s, ignoring case.
// lowerSub must already be lower-cased.
func ContainsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}

var (
	blockTag = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/h[1-6]|/div)\b[^>]*>`)
	anyTag   = regexp.MustCompile(`<[^>]*>`)
)

// PlainText drops markup from editor HTML and unescapes entities.
// Block-level closers become spaces so words do not run together.
func PlainText(s string) string {
	s = blockTag.ReplaceAllString(s, " ")
	s = anyTag.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}
