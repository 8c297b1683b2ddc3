package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/insightdelivered/receipt-savings-parser/internal/extractor"
)

// FileLoader reads receipts from disk. Text files are used as is, PDFs
// through their text layer, and anything else is treated as an image and
// sent to Recognizer.
type FileLoader struct {
	Recognizer extractor.Recognizer
	// Timeout bounds one recognition; 0 means no limit.
	Timeout time.Duration
}

// Load returns the text of the receipt at path.
func (l *FileLoader) Load(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read receipt: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return string(data), nil
	}

	format, err := extractor.DetectFormat(data)
	if err != nil {
		return "", err
	}
	if format == extractor.FormatPDF {
		return extractor.ExtractPDFText(data)
	}
	if l.Recognizer == nil {
		return "", extractor.ErrOCRNotEnabled
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	rec, err := l.Recognizer.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(rec.Text) == "" {
		return "", extractor.ErrNoText
	}
	return rec.Text, nil
}
