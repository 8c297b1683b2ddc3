package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet    = "Items"
	receiptsSheet = "Receipts"
)

var receiptColumns = []string{
	"Source", "Store", "Date", "Total", "Discount", "Items", "Method", "Confidence",
}

// XLSXWriter writes an "Items" sheet with one row per item and a "Receipts"
// sheet with one row per receipt.
type XLSXWriter struct{}

// Write writes entries as an XLSX workbook to out.
func (w *XLSXWriter) Write(out io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	// the default "Sheet1" becomes Items
	if err := f.SetSheetName(f.GetSheetName(0), itemsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(receiptsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, itemsSheet, 1, toAny(itemColumns)); err != nil {
		return err
	}
	row := 2
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		m := e.Result.Metadata
		for _, it := range e.Result.Items {
			values := []any{
				e.Source, it.ID, it.ProductName, it.Amount, string(it.Kind), it.Confidence,
				optional(it.OriginalPrice), optional(it.DiscountPercent), m.StoreName, m.Date,
			}
			if err := writeRow(f, itemsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	if err := writeRow(f, receiptsSheet, 1, toAny(receiptColumns)); err != nil {
		return err
	}
	row = 2
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		m := e.Result.Metadata
		values := []any{
			e.Source, m.StoreName, m.Date, m.TotalAmount, m.DiscountAmount,
			len(e.Result.Items), string(e.Result.Method), e.Result.OverallConfidence,
		}
		if err := writeRow(f, receiptsSheet, row, values); err != nil {
			return err
		}
		row++
	}

	_ = f.SetColWidth(itemsSheet, "A", "A", 24) // source
	_ = f.SetColWidth(itemsSheet, "C", "C", 32) // product
	_ = f.SetColWidth(itemsSheet, "I", "I", 28) // store
	_ = f.SetColWidth(receiptsSheet, "A", "B", 28)

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// optional leaves a cell empty for an unknown value.
func optional(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
