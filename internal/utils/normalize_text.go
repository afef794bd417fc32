package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CollapseSpaces trims the text and folds any run of whitespace into one space.
func CollapseSpaces(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// StripAccents removes combining marks: "Piraí" -> "Pirai".
func StripAccents(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, raw)
	if err != nil {
		return raw
	}
	return out
}

// NormalizeMunicipality folds a municipality name to its lookup form:
// lower case, no accents, letters and single spaces only.
func NormalizeMunicipality(raw string) string {
	folded := strings.ToLower(StripAccents(raw))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return CollapseSpaces(b.String())
}
