package extractor

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Gap, in PDF units, between two text runs on one row that is rendered as a
// column break. Receipt line shapes treat two spaces as "name  amount".
const columnGap = 15

// ExtractPDFFile reads the text layer of a digital receipt PDF on disk.
func ExtractPDFFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return ExtractPDFText(data)
}

// ExtractPDFText returns the text layer of a PDF, one receipt line per row.
// Scanned PDFs carry no text layer and yield ErrNoText.
func ExtractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return "", ErrNoText
	}

	// tried in order until one yields text
	for _, method := range []func() string{
		func() string { return strings.Join(extractByRow(r, numPages), "\n") },
		func() string { return strings.Join(extractByContent(r, numPages), "\n") },
		func() string { return extractByReaderPlainText(r) },
	} {
		if text = strings.TrimSpace(method()); text != "" {
			return text, nil
		}
	}
	return "", ErrNoText
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var lines []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// extractByContent groups text runs by Y and orders them by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type run struct {
		x float64
		s string
	}
	var lines []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows := make(map[int][]run)
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], run{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		// PDF Y grows upwards
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		for _, y := range ys {
			runs := rows[y]
			sort.Slice(runs, func(a, b int) bool { return runs[a].x < runs[b].x })
			var sb strings.Builder
			for j, rn := range runs {
				if j > 0 && rn.x-runs[j-1].x > columnGap {
					sb.WriteString("  ")
				}
				sb.WriteString(rn.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return string(data)
}
