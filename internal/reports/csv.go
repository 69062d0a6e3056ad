package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	locationCSVHeader = []string{"sku", "name", "unit", "price", "quantity"}
	productCSVHeader  = []string{"location", "quantity"}
)

// LocationReportCSV renders the report rows as CSV, prices in euros.
func LocationReportCSV(report *LocationReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(locationCSVHeader); err != nil {
		return nil, err
	}
	for _, row := range report.Rows {
		record := []string{
			row.SKU,
			row.ItemName,
			row.Unit.String(),
			formatEuros(row.PriceCents),
			strconv.FormatInt(row.Quantity, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ProductReportCSV renders the per-location rows plus a total line.
func ProductReportCSV(report *ProductReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(productCSVHeader); err != nil {
		return nil, err
	}
	for _, row := range report.Rows {
		if err := w.Write([]string{row.LocationName, strconv.FormatInt(row.Quantity, 10)}); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"total", strconv.FormatInt(report.Total, 10)}); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatEuros(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
