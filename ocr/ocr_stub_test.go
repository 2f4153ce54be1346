//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestNewReturnsError(t *testing.T) {
	client, err := New()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when OCR is disabled")
	}
	if Enabled {
		t.Error("Enabled = true in stub build")
	}
}

func TestRecognizeReturnsError(t *testing.T) {
	if _, err := Recognize([]byte("x"), []string{"eng"}); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Recognize error = %v, want ErrOCRNotEnabled", err)
	}
}

func TestCloseOnNilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
}
