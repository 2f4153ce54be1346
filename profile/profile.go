// Package profile holds parser tuning loaded from a YAML file.
//
// A profile is optional. Load never fails: a missing, unreadable or
// malformed file silently yields the built-in default.
package profile

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/annotext/format"
	"github.com/tsawler/annotext/internal/logging"
)

//go:embed default.yaml
var defaultYAML []byte

// Profile configures how documents are parsed.
type Profile struct {
	// MaxBytes bounds how much of a document is read. Zero means unbounded.
	MaxBytes int64 `yaml:"max_bytes"`
	// OCR enables text recognition for images (requires the ocr build tag).
	OCR          bool     `yaml:"ocr"`
	OCRLanguages []string `yaml:"ocr_languages"`
	// Readability asks the fallback converter to strip page boilerplate.
	Readability bool `yaml:"readability"`
	// Disabled lists format names that must not be parsed.
	Disabled []string `yaml:"disabled"`
	// MIMEOverrides maps a media type to the format name used to parse it.
	MIMEOverrides map[string]string `yaml:"mime_overrides"`
	// SkipElements lists HTML elements whose content is dropped.
	SkipElements []string `yaml:"skip_elements"`
	// SkipHidden drops hidden spreadsheet sheets and presentation slides.
	SkipHidden bool `yaml:"skip_hidden"`
	// SpeakerNotes keeps presentation speaker notes.
	SpeakerNotes bool `yaml:"speaker_notes"`
	// Footers keeps presentation footer, date and slide number placeholders.
	Footers bool `yaml:"footers"`
	// NonLinear keeps EPUB spine items marked linear="no".
	NonLinear bool `yaml:"non_linear"`
}

// Default returns the built-in profile.
func Default() *Profile {
	var p Profile
	if err := yaml.Unmarshal(defaultYAML, &p); err != nil {
		panic(fmt.Sprintf("profile: embedded default: %v", err))
	}
	return &p
}

// Parse decodes a YAML profile. Keys absent from data keep their defaults.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if p.MaxBytes < 0 {
		return nil, fmt.Errorf("parse profile: max_bytes must not be negative, got %d", p.MaxBytes)
	}
	return p, nil
}

// Load reads the profile at path. An empty path or any read or parse error
// returns Default; the error is logged at debug level only.
func Load(path string, log *slog.Logger) *Profile {
	log = logging.Or(log)
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug("parser profile unavailable, using default", "path", path, "error", err)
		return Default()
	}
	if len(data) == 0 {
		return Default()
	}
	p, err := Parse(data)
	if err != nil {
		log.Debug("parser profile invalid, using default", "path", path, "error", err)
		return Default()
	}
	return p
}

// Enabled reports whether documents of format f may be parsed.
func (p *Profile) Enabled(f format.Format) bool {
	for _, name := range p.Disabled {
		if format.Parse(name) == f {
			return false
		}
	}
	return true
}

// Override returns the format configured for mimeType, if any.
func (p *Profile) Override(mimeType string) (format.Format, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for k, v := range p.MIMEOverrides {
		if strings.EqualFold(k, mt) {
			if f := format.Parse(v); f != format.Unknown {
				return f, true
			}
		}
	}
	return format.Unknown, false
}

// Skips reports whether content of the named element is dropped.
func (p *Profile) Skips(element string) bool {
	for _, e := range p.SkipElements {
		if strings.EqualFold(e, element) {
			return true
		}
	}
	return false
}
