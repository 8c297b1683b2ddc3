//go:build ocr

package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes receipt images with a local Tesseract install.
// A gosseract client is not safe for concurrent use, so each call gets its own.
type Tesseract struct {
	Language string
	// Tokens also collects a per-word breakdown.
	Tokens bool
	// MaxDimension is passed to PrepareImage; 0 means DefaultMaxDimension.
	MaxDimension int
	Logger       *slog.Logger
}

// NewTesseract returns a Tesseract recognizer for lang ("jpn+eng" when empty).
func NewTesseract(lang string, logger *slog.Logger) *Tesseract {
	if lang == "" {
		lang = DefaultLanguage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{Language: lang, Logger: logger}
}

// Recognize runs OCR on img. Tesseract cannot be interrupted; when ctx ends
// first the call returns ctx.Err() and the recognition finishes in the background.
func (t *Tesseract) Recognize(ctx context.Context, img []byte) (Recognition, error) {
	prepared, err := PrepareImage(img, t.MaxDimension)
	if err != nil {
		return Recognition{}, err
	}

	type outcome struct {
		rec Recognition
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		rec, err := t.recognize(prepared)
		done <- outcome{rec, err}
	}()

	select {
	case <-ctx.Done():
		return Recognition{}, ctx.Err()
	case out := <-done:
		if out.err != nil {
			t.Logger.Warn("ocr.recognize.failed", "error", out.err)
			return Recognition{}, out.err
		}
		t.Logger.Debug("ocr.recognize.ok", "chars", len(out.rec.Text), "tokens", len(out.rec.Tokens))
		return out.rec, nil
	}
}

func (t *Tesseract) recognize(img []byte) (Recognition, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(t.Language, "+")...); err != nil {
		return Recognition{}, fmt.Errorf("set language: %w", err)
	}
	// receipts are a single column of variable-size text
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		return Recognition{}, fmt.Errorf("set page seg mode: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return Recognition{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Recognition{}, ErrNoText
	}

	rec := Recognition{Text: text}
	if t.Tokens {
		boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
		if err != nil {
			return Recognition{}, fmt.Errorf("word boxes: %w", err)
		}
		rec.Tokens = make([]Token, 0, len(boxes))
		for _, b := range boxes {
			rec.Tokens = append(rec.Tokens, Token{Text: b.Word, Confidence: b.Confidence, Box: b.Box})
		}
	}
	return rec, nil
}
