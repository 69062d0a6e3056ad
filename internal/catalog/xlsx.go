package catalog

import (
	"github.com/xuri/excelize/v2"
)

// XLSXTemplate renders the import header row plus one example line as a
// spreadsheet, for clients that fill templates in Excel rather than a
// text editor. The column order matches the CSV import format.
func XLSXTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(csvHeader))
	for i, column := range csvHeader {
		header[i] = column
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return nil, err
	}

	example := []any{"WID-001", "Widget", 1.25, 4.50, "unit"}
	if err := f.SetSheetRow("Sheet1", "A2", &example); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
