// Package config loads annotext settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/tsawler/annotext/extracterr"
)

// Config holds the settings shared by the pipeline and the CLI.
type Config struct {
	// InputDir is the directory a collection is read from.
	InputDir string `json:"InputDirectory"`
	// Language, when set, overrides language detection for every document.
	Language string `json:"Language"`
	// MIME, when set, is used as the media type hint for every document.
	MIME string `json:"MIME"`
	// ProfilePath points at an optional YAML parser profile.
	ProfilePath string `json:"ProfilePath"`

	// DetectLanguage enables language detection.
	DetectLanguage bool `json:"DetectLanguage"`
	// LegacyDetector selects the deprecated stop-word detector.
	LegacyDetector  bool `json:"LegacyDetector"`
	MinLanguageText int  `json:"MinLanguageText"`

	SourceView string `json:"SourceView"`
	TextView   string `json:"TextView"`
	// Mismatch is the close-tag policy: "positional" or "strict".
	Mismatch string `json:"Mismatch"`

	Workers int           `json:"Workers"`
	Timeout time.Duration `json:"Timeout"`
	// Digest adds a blake3 content digest to each document's metadata.
	Digest bool `json:"Digest"`

	LogLevel  string `json:"LogLevel"`
	LogFormat string `json:"LogFormat"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DetectLanguage:  false,
		MinLanguageText: 20,
		Mismatch:        "positional",
		Workers:         1,
		LogLevel:        "warn",
		LogFormat:       "text",
	}
}

// FromEnv loads a .env file if present and reads ANNOTEXT_* variables over
// the defaults. It does not validate.
func FromEnv() Config {
	_ = godotenv.Load()

	d := Default()
	return Config{
		InputDir:        getEnv("ANNOTEXT_INPUT_DIR", d.InputDir),
		Language:        getEnv("ANNOTEXT_LANGUAGE", d.Language),
		MIME:            getEnv("ANNOTEXT_MIME", d.MIME),
		ProfilePath:     getEnv("ANNOTEXT_PROFILE", d.ProfilePath),
		DetectLanguage:  getEnvBool("ANNOTEXT_DETECT_LANGUAGE", d.DetectLanguage),
		LegacyDetector:  getEnvBool("ANNOTEXT_LEGACY_DETECTOR", d.LegacyDetector),
		MinLanguageText: getEnvInt("ANNOTEXT_MIN_LANGUAGE_TEXT", d.MinLanguageText),
		SourceView:      getEnv("ANNOTEXT_SOURCE_VIEW", d.SourceView),
		TextView:        getEnv("ANNOTEXT_TEXT_VIEW", d.TextView),
		Mismatch:        getEnv("ANNOTEXT_MISMATCH", d.Mismatch),
		Workers:         getEnvInt("ANNOTEXT_WORKERS", d.Workers),
		Timeout:         getEnvDuration("ANNOTEXT_TIMEOUT", d.Timeout),
		Digest:          getEnvBool("ANNOTEXT_DIGEST", d.Digest),
		LogLevel:        getEnv("ANNOTEXT_LOG_LEVEL", d.LogLevel),
		LogFormat:       getEnv("ANNOTEXT_LOG_FORMAT", d.LogFormat),
	}
}

// Validate checks the settings that do not depend on an input directory.
func (c Config) Validate() error {
	return convert(c, validation.ValidateStruct(&c,
		validation.Field(&c.Mismatch, validation.In("positional", "strict", "Positional", "Strict")),
		validation.Field(&c.MinLanguageText, validation.Min(0)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	))
}

// ValidateCollection checks Validate plus the input directory, which must
// exist and be a directory.
func (c Config) ValidateCollection() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return convert(c, validation.ValidateStruct(&c,
		validation.Field(&c.InputDir, validation.Required, validation.By(isDirectory)),
	))
}

func isDirectory(value interface{}) error {
	dir, _ := value.(string)
	if dir == "" {
		return nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.New("directory does not exist")
	}
	if !fi.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

// convert turns ozzo field errors into ConfigurationErrors, one per field in
// name order.
func convert(c Config, err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return &extracterr.ConfigurationError{Field: "config", Reason: err.Error(), Err: err}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, &extracterr.ConfigurationError{
			Field:  name,
			Value:  c.value(name),
			Reason: fields[name].Error(),
			Err:    fields[name],
		})
	}
	return errors.Join(errs...)
}

func (c Config) value(field string) string {
	switch field {
	case "InputDirectory":
		return c.InputDir
	case "Mismatch":
		return c.Mismatch
	case "MinLanguageText":
		return strconv.Itoa(c.MinLanguageText)
	case "Workers":
		return strconv.Itoa(c.Workers)
	case "Timeout":
		return c.Timeout.String()
	case "LogLevel":
		return c.LogLevel
	case "LogFormat":
		return c.LogFormat
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// String renders the settings for debug logging.
func (c Config) String() string {
	return fmt.Sprintf("input=%q language=%q mime=%q profile=%q detect=%t legacy=%t workers=%d mismatch=%s",
		c.InputDir, c.Language, c.MIME, c.ProfilePath, c.DetectLanguage, c.LegacyDetector, c.Workers, c.Mismatch)
}
