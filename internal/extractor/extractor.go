// Package extractor turns receipt images and PDFs into recognized text.
//
// The parser never sees images; everything here sits on the boundary in
// front of it. Image OCR needs Tesseract and is compiled in with the "ocr"
// build tag. Without the tag, Tesseract returns ErrOCRNotEnabled.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNoText means recognition succeeded but found no text.
	ErrNoText = errors.New("no text detected")
	// ErrUnsupportedFormat means the input is not a decodable image or PDF.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrOCRNotEnabled is returned by Tesseract when built without the "ocr" tag.
	ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")
	// ErrRateLimited means no recognition slot freed up before the deadline.
	ErrRateLimited = errors.New("OCR rate limit reached")
)

// Token is one recognized word and where it sits on the image.
type Token struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Recognition is the output of one OCR call.
type Recognition struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens,omitempty"`
}

// Recognizer converts image bytes into text.
type Recognizer interface {
	Recognize(ctx context.Context, img []byte) (Recognition, error)
}

// Format is the detected kind of an uploaded file.
type Format string

const (
	FormatPDF Format = "pdf"
)

// DefaultLanguage is the Tesseract language set for Japanese receipts.
const DefaultLanguage = "jpn+eng"

var pdfMagic = []byte("%PDF-")

// DetectFormat reports the image format name ("jpeg", "png", ...) or
// FormatPDF, or ErrUnsupportedFormat when data is neither.
func DetectFormat(data []byte) (Format, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		return FormatPDF, nil
	}
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return Format(name), nil
}
