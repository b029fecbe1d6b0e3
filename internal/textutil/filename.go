package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes a rename target safe to use as a single path
// element. Path separators, colons and asterisks become dashes, the other
// characters Windows rejects are dropped, and control characters are removed.
// Surrounding whitespace and dots are trimmed, so the result is never "." or
// "..". An empty result means the name had nothing usable.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(strings.TrimSpace(b.String()), ".")
}
