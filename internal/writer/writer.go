package writer

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/receipt-savings-parser/internal/models"
)

// Entry is one parsed receipt and where it came from.
type Entry struct {
	Source string
	Result *models.ParseResult
}

// Writer exports parsed receipts.
type Writer interface {
	Write(out io.Writer, entries []Entry) error
}

// New returns the writer for format ("csv" or "xlsx").
func New(format string, includeHeader bool) (Writer, error) {
	switch format {
	case "csv":
		return &CSVWriter{IncludeHeader: includeHeader}, nil
	case "xlsx":
		return &XLSXWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// WriteToFile writes entries to path with w.
func WriteToFile(w Writer, path string, entries []Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()
	return w.Write(f, entries)
}

var itemColumns = []string{
	"Source", "ID", "Product", "Amount", "Type", "Confidence",
	"Original Price", "Discount %", "Store", "Date",
}

// itemRows flattens entries into one row per item, in entry order.
func itemRows(entries []Entry) [][]string {
	var rows [][]string
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		meta := e.Result.Metadata
		for _, it := range e.Result.Items {
			rows = append(rows, []string{
				e.Source,
				strconv.Itoa(it.ID),
				it.ProductName,
				strconv.Itoa(it.Amount),
				string(it.Kind),
				formatConfidence(it.Confidence),
				formatOptional(it.OriginalPrice),
				formatOptional(it.DiscountPercent),
				meta.StoreName,
				meta.Date,
			})
		}
	}
	return rows
}

// savings sums discount item amounts across entries.
func savings(entries []Entry) int {
	total := 0
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		for _, it := range e.Result.Items {
			if it.Kind == models.ItemDiscount {
				total += it.Amount
			}
		}
	}
	return total
}

func formatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}

func formatOptional(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
