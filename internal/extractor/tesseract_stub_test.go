//go:build !ocr

package extractor

import (
	"context"
	"errors"
	"testing"
)

func TestTesseractStub(t *testing.T) {
	tess := NewTesseract("", nil)
	if tess.Language != DefaultLanguage {
		t.Errorf("language: got %q, want %q", tess.Language, DefaultLanguage)
	}
	if _, err := tess.Recognize(context.Background(), []byte("img")); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
}
