// Package textutil canonicalizes free text before lexical comparison.
package textutil

import (
	"strings"
	"unicode"
)

// Normalize lowercases the input, strips characters outside word
// characters, whitespace, and hyphen, collapses whitespace runs to a
// single space, and trims the ends. Total and idempotent; never applied
// to URLs (URL comparisons are exact).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_' || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
