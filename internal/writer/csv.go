package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVWriter writes parsed items to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// Write writes entries in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, entries []Entry) error {
	writer := csv.NewWriter(out)

	// Summary as comment rows
	if w.IncludeHeader {
		meta := [][]string{
			{"# Receipts", strconv.Itoa(len(entries))},
			{"# Savings", strconv.Itoa(savings(entries))},
		}
		if len(entries) == 1 && entries[0].Result != nil {
			res := entries[0].Result
			if res.Metadata.StoreName != "" {
				meta = append(meta, []string{"# Store", res.Metadata.StoreName})
			}
			if res.Metadata.Date != "" {
				meta = append(meta, []string{"# Date", res.Metadata.Date})
			}
			if res.Metadata.TotalAmount > 0 {
				meta = append(meta, []string{"# Total", strconv.Itoa(res.Metadata.TotalAmount)})
			}
			meta = append(meta,
				[]string{"# Method", string(res.Method)},
				[]string{"# Confidence", formatConfidence(res.OverallConfidence)},
			)
		}
		if err := writer.WriteAll(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := writer.Write(itemColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range itemRows(entries) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
