package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeNote returns the note text in NFC form with every whitespace run,
// including line breaks, collapsed to a single space.
func NormalizeNote(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// Preview returns the normalized note truncated to at most limit runes. A
// truncated preview ends with "...". A non-positive limit disables
// truncation.
func Preview(text string, limit int) string {
	normalized := NormalizeNote(text)
	if limit <= 0 {
		return normalized
	}
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
