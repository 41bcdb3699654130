// Package slug converts arbitrary titles and filenames into clean,
// URL-safe tokens. All slug derivation in the migration pipeline goes
// through Make so that pages, directories and assets agree on one
// transliteration scheme.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so that
// "Librería" becomes "Libreria" before lowercasing.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make transliterates s into a lowercase hyphen-separated slug of at
// most maxLen bytes. Non-alphanumeric runs collapse into a single
// hyphen. The result may be empty when s contains no usable runes;
// callers that need a non-empty token must supply their own fallback.
func Make(s string, maxLen int) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transliteration is best effort; fall back to the raw input.
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = truncateAtHyphen(out, maxLen)
	}
	return strings.Trim(out, "-")
}

// truncateAtHyphen cuts s to at most maxLen bytes, preferring to cut at
// the last hyphen so no word is left half-truncated.
func truncateAtHyphen(s string, maxLen int) string {
	cut := s[:maxLen]
	if idx := strings.LastIndexByte(cut, '-'); idx > 0 {
		return cut[:idx]
	}
	return cut
}

var titleCaser = cases.Title(language.Und)

// Humanize turns a slug or filename stem back into display text:
// hyphens and underscores become spaces and each word is title-cased.
// Used as the fallback when no curated display title exists.
func Humanize(s string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return titleCaser.String(strings.Join(strings.Fields(replaced), " "))
}
