package langdetect

import (
	"github.com/abadojack/whatlanggo"
)

// Whatlang detects languages with the whatlanggo trigram models.
type Whatlang struct {
	// Reliable rejects guesses whatlanggo itself marks as unreliable.
	Reliable bool
}

// Detect returns the ISO 639-1 code of the most likely language, falling
// back to ISO 639-3 for languages without a two-letter code.
func (w Whatlang) Detect(text string) (string, error) {
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "", ErrTooShort
	}
	if w.Reliable && !info.IsReliable() {
		return "", ErrAmbiguous
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code, nil
	}
	return info.Lang.Iso6393(), nil
}
