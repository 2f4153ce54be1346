package langdetect

import (
	"strings"
	"unicode"
)

// Legacy is a small stop-word profile detector covering a handful of
// Western European languages.
//
// Deprecated: Legacy knows only seven languages and needs a fair amount of
// text; use Whatlang. It is kept for output compatibility with older
// pipelines and is only used when explicitly enabled.
type Legacy struct {
	// MinHits is the number of stop words that must be recognized.
	// Defaults to 3.
	MinHits int
}

var legacyProfiles = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "is", "that", "for", "it", "with", "as", "was", "on", "are", "this", "be", "by", "not", "or", "which"},
	"de": {"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf", "für", "ist", "im", "dem", "nicht", "ein", "eine", "als"},
	"fr": {"le", "la", "les", "de", "des", "et", "en", "un", "une", "du", "est", "que", "qui", "dans", "pour", "pas", "au", "sur", "par", "avec"},
	"es": {"el", "la", "de", "que", "y", "en", "los", "del", "se", "las", "por", "un", "para", "con", "no", "una", "su", "al", "es", "lo"},
	"it": {"il", "di", "che", "e", "la", "per", "un", "in", "del", "non", "una", "della", "le", "si", "con", "sono", "gli", "alla", "da", "nel"},
	"nl": {"de", "het", "een", "en", "van", "ik", "te", "dat", "die", "in", "is", "niet", "op", "met", "zijn", "voor", "aan", "er", "maar", "om"},
	"pt": {"o", "de", "a", "que", "e", "do", "da", "em", "um", "para", "com", "não", "uma", "os", "no", "se", "na", "por", "mais", "as"},
}

var legacyIndex = buildLegacyIndex()

func buildLegacyIndex() map[string][]string {
	idx := make(map[string][]string)
	for lang, words := range legacyProfiles {
		for _, w := range words {
			idx[w] = append(idx[w], lang)
		}
	}
	return idx
}

// Languages returns the codes Legacy can report.
func (Legacy) Languages() []string {
	return []string{"de", "en", "es", "fr", "it", "nl", "pt"}
}

// Detect scores text against each stop-word profile.
func (l Legacy) Detect(text string) (string, error) {
	minHits := l.MinHits
	if minHits <= 0 {
		minHits = 3
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	scores := make(map[string]int)
	hits := 0
	for _, w := range words {
		langs, ok := legacyIndex[w]
		if !ok {
			continue
		}
		hits++
		for _, lang := range langs {
			scores[lang]++
		}
	}
	if hits < minHits {
		return "", ErrTooShort
	}

	best, second := "", 0
	bestScore := 0
	for _, lang := range l.Languages() {
		s := scores[lang]
		switch {
		case s > bestScore:
			second = bestScore
			best, bestScore = lang, s
		case s > second:
			second = s
		}
	}
	if bestScore == second {
		return "", ErrAmbiguous
	}
	return best, nil
}
