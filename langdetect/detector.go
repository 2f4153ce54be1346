// Package langdetect guesses the language of committed text.
//
// Detection is best effort. A [Detector] may fail on short or ambiguous
// text; the [Adapter] catches every failure, logs it and reports
// [Unknown]. An explicit language override always wins and skips
// detection entirely.
package langdetect

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/tsawler/annotext/extracterr"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/model"
)

// Unknown is reported when no language could be determined.
const Unknown = "unknown"

// Detection errors.
var (
	ErrTooShort  = errors.New("text too short to identify")
	ErrAmbiguous = errors.New("ambiguous language profile")
)

// Detector guesses the language of text and returns an ISO 639 code.
type Detector interface {
	Detect(text string) (string, error)
}

// Func adapts a function to the Detector interface.
type Func func(text string) (string, error)

// Detect calls f.
func (f Func) Detect(text string) (string, error) { return f(text) }

// Canonical normalizes a language code through BCP 47 parsing, so "EN",
// "en_US" and "en-us" become "en" and "en-US". Codes that do not parse are
// returned trimmed but otherwise unchanged.
func Canonical(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}

// Adapter applies a Detector to views.
type Adapter struct {
	// Detector is consulted when Override is empty. Nil disables detection.
	Detector Detector
	// Override, when set, is applied to every view without detection.
	Override string
	// MinLength is the minimum number of letters (runes, after trimming)
	// needed before the detector is consulted.
	MinLength int
	Logger    *slog.Logger
}

// Detect returns the language of text or Unknown. It never fails.
func (a Adapter) Detect(text string) string {
	if a.Override != "" {
		return Canonical(a.Override)
	}
	if a.Detector == nil {
		return Unknown
	}
	log := logging.Or(a.Logger)

	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < a.MinLength {
		log.Debug("text below language detection minimum", "length", n, "min", a.MinLength)
		return Unknown
	}

	code, err := a.safeDetect(text)
	if err != nil {
		log.Info("could not extract language",
			"error", &extracterr.LanguageDetectionFailure{Detector: fmt.Sprintf("%T", a.Detector), Err: err})
		return Unknown
	}
	code = Canonical(code)
	if code == "" {
		return Unknown
	}
	return code
}

func (a Adapter) safeDetect(text string) (code string, err error) {
	defer func() {
		if p := recover(); p != nil {
			code, err = "", fmt.Errorf("detector panic: %v", p)
		}
	}()
	return a.Detector.Detect(text)
}

// Apply sets the language of v from Override or detection and returns it.
// A view whose language cannot be determined keeps its current language.
func (a Adapter) Apply(v *model.View) string {
	lang := a.Detect(v.Text())
	if lang != Unknown {
		v.SetLanguage(lang)
	}
	logging.Or(a.Logger).Debug("extracted language", "view", v.Name(), "language", lang)
	return lang
}
