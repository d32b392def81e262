// Package export renders tabular data as an .xlsx workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an .xlsx file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is one worksheet: a header row followed by data rows.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]interface{}
}

// Workbook renders t into a single-sheet workbook and returns its bytes.
func Workbook(t Table) ([]byte, error) {
	if t.Sheet == "" {
		t.Sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), t.Sheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := writeRow(f, t.Sheet, 1, header); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		if err := writeRow(f, t.Sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if len(t.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		if err := f.SetColWidth(t.Sheet, "A", last, 18); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: row %d: %w", row, err)
	}
	return nil
}
