// Package normalize cleans extracted document text before embedding.
package normalize

import (
	"strings"
	"unicode"
)

// Clean removes every character outside the allowed set (letters, digits,
// underscore, whitespace, and . , ? ! : ; - ') and collapses any run of
// whitespace into a single space. The result is trimmed; empty input yields
// an empty string. Clean is pure and idempotent.
//
// Note that Clean flattens newlines, so paragraph-aware chunking must happen
// before it, not after.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if allowed(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func allowed(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
		return true
	}
	switch r {
	case '.', ',', '?', '!', ':', ';', '-', '\'':
		return true
	}
	return false
}
