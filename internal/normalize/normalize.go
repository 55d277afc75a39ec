// Package normalize holds the text helpers every matcher goes through, so
// keyword checks behave the same regardless of how a source formats its text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanText collapses whitespace runs (NBSP included) to single spaces and
// trims. Case is preserved.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Normalize is CleanText followed by lower-casing.
func Normalize(s string) string {
	return strings.ToLower(CleanText(s))
}

// Fold is Normalize with diacritics removed ("Análise" -> "analise").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return Normalize(out)
}
