//go:build !ocr

package extractor

import (
	"context"
	"log/slog"
)

// Tesseract is the stub used when the "ocr" build tag is not set.
type Tesseract struct {
	Language     string
	Tokens       bool
	MaxDimension int
	Logger       *slog.Logger
}

// NewTesseract returns a stub recognizer.
func NewTesseract(lang string, logger *slog.Logger) *Tesseract {
	if lang == "" {
		lang = DefaultLanguage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{Language: lang, Logger: logger}
}

// Recognize always returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(ctx context.Context, img []byte) (Recognition, error) {
	return Recognition{}, ErrOCRNotEnabled
}
