package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/newsdesk/newsdesk/pkg/slug"
)

const (
	MaxTokens   = 8
	minTokenLen = 2
)

var stopwordList = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "not", "of", "on", "or", "that",
	"the", "this", "to", "was", "were", "what", "will", "with",
	// bangla
	"এবং", "ও", "এই", "যে", "না", "কি", "করে", "হয়", "থেকে", "জন্য",
}

// stopwords holds the folded forms so they compare equal to folded words.
var stopwords = func() map[string]bool {
	m := make(map[string]bool, len(stopwordList))
	for _, w := range stopwordList {
		m[slug.Fold(w)] = true
	}
	return m
}()

// wordRune keeps letters, digits and the combining marks that spell
// Bengali vowel signs.
func wordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// words folds s and splits it into words.
func words(s string) []string {
	return strings.FieldsFunc(slug.Fold(s), func(r rune) bool { return !wordRune(r) })
}

// Tokenize folds q, drops stopwords and one-rune words, dedupes and keeps at
// most MaxTokens tokens in query order.
func Tokenize(q string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, w := range words(q) {
		if stopwords[w] || utf8.RuneCountInString(w) < minTokenLen || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == MaxTokens {
			break
		}
	}
	return out
}

// phrase is the folded query with punctuation collapsed to single spaces.
func phrase(s string) string {
	return strings.Join(words(s), " ")
}
