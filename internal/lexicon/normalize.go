package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Normalize case-folds text and collapses runs of whitespace into single spaces.
func Normalize(text string) string {
	// cases.Caser is stateful, so each call gets its own.
	folded := cases.Fold().String(text)
	return strings.Join(strings.Fields(folded), " ")
}

// Tokenize splits normalized text on every rune that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
