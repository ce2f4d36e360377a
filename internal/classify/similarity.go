package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

func wordSet(s string) map[string]bool {
	words := strings.FieldsFunc(cases.Fold().String(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '&'
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// WordSimilarity is the Jaccard index of the lowercase word sets of a and b:
// |a ∩ b| / |a ∪ b|. Two empty inputs score 0.
func WordSimilarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}
