// Package extracterr defines the error classes surfaced by annotext.
//
// Each class has a sentinel reachable through errors.Is and a struct type
// reachable through errors.As:
//
//   - ConfigurationError: bad input directory or setting, fatal at startup.
//   - ResourceAcquisitionError: a document's byte stream cannot be opened.
//   - ParseFailure: the format decoder failed; the cause is preserved.
//   - IOError: a ParseFailure whose cause was an I/O failure, re-signaled.
//   - StructuralError: unbalanced markup; recovered and logged, only
//     surfaced under the strict close-tag policy.
//   - WriteOnceViolation: a View's text or metadata was set twice.
//   - LanguageDetectionFailure: always swallowed by the detection adapter.
package extracterr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// Sentinel errors for each error class.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrResource      = errors.New("resource acquisition error")
	ErrParse         = errors.New("parse failure")
	ErrIO            = errors.New("i/o failure")
	ErrStructure     = errors.New("structural error")
	ErrWriteOnce     = errors.New("write-once violation")
	ErrLanguage      = errors.New("language detection failure")
)

// ConfigurationError reports an invalid setting.
type ConfigurationError struct {
	Field  string // Setting name, e.g. "InputDirectory"
	Value  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// ResourceAcquisitionError reports a document stream that could not be opened.
type ResourceAcquisitionError struct {
	Resource string // Path or URL
	Err      error
}

func (e *ResourceAcquisitionError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Resource, e.Err)
}

func (e *ResourceAcquisitionError) Unwrap() []error {
	return []error{ErrResource, e.Err}
}

// ParseFailure wraps an error raised by a format decoder.
type ParseFailure struct {
	Format string
	Err    error
}

func (e *ParseFailure) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("parsing %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("parsing document: %v", e.Err)
}

func (e *ParseFailure) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// IOError is a decoder failure caused by the underlying byte stream.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// StructuralError describes unbalanced or mismatched markup.
type StructuralError struct {
	Want   string // Element expected on top of the stack, empty when the stack was empty
	Got    string // Element named by the close tag
	Offset int    // Buffer length when the condition was detected
}

func (e *StructuralError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("unbalanced close tag %q at offset %d", e.Got, e.Offset)
	}
	return fmt.Sprintf("close tag %q does not match open %q at offset %d", e.Got, e.Want, e.Offset)
}

func (e *StructuralError) Unwrap() error { return ErrStructure }

// WriteOnceViolation reports a second write to a write-once View field.
type WriteOnceViolation struct {
	View  string
	Field string // "text", "metadata" or "data"
}

func (e *WriteOnceViolation) Error() string {
	return fmt.Sprintf("view %q: %s already set", e.View, e.Field)
}

func (e *WriteOnceViolation) Unwrap() error { return ErrWriteOnce }

// LanguageDetectionFailure wraps an error raised by a language detector.
type LanguageDetectionFailure struct {
	Detector string
	Err      error
}

func (e *LanguageDetectionFailure) Error() string {
	return fmt.Sprintf("language detection (%s): %v", e.Detector, e.Err)
}

func (e *LanguageDetectionFailure) Unwrap() []error {
	return []error{ErrLanguage, e.Err}
}

// NewParseFailure wraps a decoder error. When the cause is itself an I/O
// failure it is re-signaled as an *IOError so callers can tell the two
// classes apart. A nil cause returns nil.
func NewParseFailure(format string, cause error) error {
	if cause == nil {
		return nil
	}
	if ioErr := asIO(cause); ioErr != nil {
		return ioErr
	}
	var pf *ParseFailure
	if errors.As(cause, &pf) {
		return cause
	}
	return &ParseFailure{Format: format, Err: cause}
}

func asIO(err error) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ioErr
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &IOError{Op: pathErr.Op, Err: pathErr}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, fs.ErrClosed) {
		return &IOError{Op: "read", Err: err}
	}
	return nil
}

// IsIO reports whether err belongs to the I/O failure class.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}
