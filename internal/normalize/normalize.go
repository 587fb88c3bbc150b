// Package normalize strips diacritics from text.
package normalize

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents decomposes s (NFD) and drops every combining mark, so
// "João" becomes "Joao". Case, order and non-letter runes are preserved.
func StripAccents(s string) string {
	if s == "" {
		return s
	}
	// transform.Chain is stateful; build one per call so concurrent use is safe.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
