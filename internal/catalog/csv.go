package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

// csvHeader is the canonical import/export column order.
var csvHeader = []string{"sku", "name", "cost", "price", "quantityKind"}

// CSVTemplate returns the header row plus one example line for download.
func CSVTemplate() string {
	return strings.Join(csvHeader, ",") + "\n" +
		"WID-001,Widget,1.25,4.50,unit\n"
}

// CSVRow is one parsed and normalised import line.
type CSVRow struct {
	SKU        string
	Name       string
	CostCents  *int64
	PriceCents int64
	Unit       enums.QuantityUnit
}

// ParseCSVResult carries the usable rows plus how many lines were dropped.
type ParseCSVResult struct {
	Rows    []CSVRow
	Skipped int
}

// ParseItemsCSV reads the import format. Rows without a SKU or name are
// skipped rather than failing the whole file; prices are euros and are
// converted to cents with half-up rounding.
func ParseItemsCSV(r io.Reader, maxRows int) (*ParseCSVResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ParseCSVResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("read csv line %d", line+1))
		}
		line++
		if maxRows > 0 && len(result.Rows) >= maxRows {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("csv exceeds %d rows", maxRows))
		}

		row, ok := parseRow(record, columns)
		if !ok {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"sku", "name"} {
		if _, ok := columns[required]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("csv missing %q column", required))
		}
	}
	return columns, nil
}

func parseRow(record []string, columns map[string]int) (CSVRow, bool) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	sku := field("sku")
	name := field("name")
	if sku == "" || name == "" {
		return CSVRow{}, false
	}

	row := CSVRow{
		SKU:        sku,
		Name:       name,
		PriceCents: parseEuroCents(field("price")),
		Unit:       enums.ParseQuantityUnit(field("quantityKind")),
	}
	if cost := field("cost"); cost != "" {
		cents := parseEuroCents(cost)
		row.CostCents = &cents
	}
	return row, true
}

// parseEuroCents converts a euro amount string to cents. Unparseable values
// fall back to zero, matching the lenient import behaviour of the UI.
func parseEuroCents(value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
	if err != nil {
		return 0
	}
	return parsed.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
