// Package slug turns titles into ASCII URL slugs and folds text for matching.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiHyphen = regexp.MustCompile(`-{2,}`)

// MaxLen bounds generated slugs.
const MaxLen = 96

// accents matches nonspacing marks (Mn). Bengali marks such as the hasanta
// and vowel signs are part of the spelling and are kept.
var accents = runes.Predicate(func(r rune) bool {
	return unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Bengali, r)
})

// Fold lower-cases s and strips accents ("Café" -> "cafe").
// Letters of any script are kept as-is.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(accents), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// From converts an arbitrary title into a URL-safe slug. Titles without any
// ASCII letters or digits produce "".
func From(s string) string {
	folded := Fold(s)
	out := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, folded)
	out = multiHyphen.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	if len(out) > MaxLen {
		out = strings.TrimRight(out[:MaxLen], "-")
	}
	return out
}
