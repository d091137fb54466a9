// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "strings"

// languageSampleSize bounds how much text the lexical heuristic reads.
const languageSampleSize = 2000

// functionWords is a small closed set of high-frequency function words per
// supported language. Counting them over the head of the document is crude
// but cheap and works well on business correspondence.
var functionWords = map[string][]string{
	"en": {"the", "and", "of", "to", "with", "for", "is", "your", "this", "from"},
	"fr": {"le", "la", "les", "et", "des", "vous", "pour", "avec", "est", "dans"},
	"de": {"der", "die", "das", "und", "für", "mit", "sie", "ist", "wir", "von"},
}

// DetectLanguage picks the language whose function words occur most often
// in the first 2000 characters. Ties and zero-signal inputs fall back to
// fallback, reflecting the predominantly German-speaking user base.
func DetectLanguage(text, fallback string) string {
	sample := text
	if len(sample) > languageSampleSize {
		sample = sample[:languageSampleSize]
	}

	tokens := strings.FieldsFunc(strings.ToLower(sample), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == 'ä' || r == 'ö' || r == 'ü' || r == 'é' || r == 'è' || r == 'à' || r == 'ç')
	})
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	best, bestScore := fallback, 0
	for _, lang := range []string{"de", "fr", "en"} {
		score := 0
		for _, w := range functionWords[lang] {
			score += counts[w]
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}
	return best
}
