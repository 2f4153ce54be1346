package extracterr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func TestNewParseFailure_WrapsCause(t *testing.T) {
	cause := errors.New("bad xref table")
	err := NewParseFailure("PDF", cause)

	var pf *ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected *ParseFailure, got %T", err)
	}
	if !errors.Is(err, ErrParse) {
		t.Error("ParseFailure should match ErrParse")
	}
	if !errors.Is(err, cause) {
		t.Error("ParseFailure should preserve the original cause")
	}
	if IsIO(err) {
		t.Error("a plain decoder error is not an I/O failure")
	}
	if !strings.Contains(err.Error(), "PDF") {
		t.Errorf("message should name the format: %q", err.Error())
	}
}

func TestNewParseFailure_UnwrapsIO(t *testing.T) {
	tests := []struct {
		name  string
		cause error
	}{
		{"path error", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}},
		{"unexpected EOF", fmt.Errorf("reading zip: %w", io.ErrUnexpectedEOF)},
		{"closed", fs.ErrClosed},
		{"already IOError", &IOError{Op: "read", Err: errors.New("disk gone")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParseFailure("DOCX", tt.cause)
			if !IsIO(err) {
				t.Fatalf("expected I/O class, got %T: %v", err, err)
			}
			var pf *ParseFailure
			if errors.As(err, &pf) {
				t.Error("an I/O cause must not be reported as ParseFailure")
			}
		})
	}
}

func TestNewParseFailure_Nil(t *testing.T) {
	if err := NewParseFailure("HTML", nil); err != nil {
		t.Errorf("NewParseFailure(nil) = %v, want nil", err)
	}
}

func TestNewParseFailure_NoDoubleWrap(t *testing.T) {
	inner := &ParseFailure{Format: "ODT", Err: errors.New("x")}
	if got := NewParseFailure("HTML", inner); got != error(inner) {
		t.Errorf("existing ParseFailure should pass through, got %v", got)
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{&ConfigurationError{Field: "InputDirectory", Reason: "missing"}, ErrConfiguration},
		{&ResourceAcquisitionError{Resource: "a.pdf", Err: fs.ErrPermission}, ErrResource},
		{&StructuralError{Got: "b"}, ErrStructure},
		{&WriteOnceViolation{View: "textView", Field: "text"}, ErrWriteOnce},
		{&LanguageDetectionFailure{Detector: "legacy", Err: errors.New("short")}, ErrLanguage},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%T should match %v", tt.err, tt.want)
		}
	}

	rae := &ResourceAcquisitionError{Resource: "a.pdf", Err: fs.ErrPermission}
	if !errors.Is(rae, fs.ErrPermission) {
		t.Error("ResourceAcquisitionError should expose its cause")
	}
}

func TestStructuralError_Message(t *testing.T) {
	e := &StructuralError{Got: "p", Offset: 4}
	if !strings.Contains(e.Error(), "unbalanced") {
		t.Errorf("empty-stack message = %q", e.Error())
	}
	e = &StructuralError{Want: "b", Got: "i", Offset: 4}
	if !strings.Contains(e.Error(), `"i"`) || !strings.Contains(e.Error(), `"b"`) {
		t.Errorf("mismatch message = %q", e.Error())
	}
}
