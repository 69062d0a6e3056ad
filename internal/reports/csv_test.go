package reports

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
)

func TestLocationReportCSV(t *testing.T) {
	report := &LocationReport{
		Location: models.Location{Name: "Warehouse"},
		Rows: []LocationRow{
			{SKU: "WID-001", ItemName: "Widget", Unit: enums.QuantityUnitDiscrete, PriceCents: 250, Quantity: 7},
			{SKU: "FLR-010", ItemName: "Flour", Unit: enums.QuantityUnitWeighted, PriceCents: 95, Quantity: 25},
		},
	}

	out, err := LocationReportCSV(report)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "sku,name,unit,price,quantity", lines[0])
	assert.Equal(t, "WID-001,Widget,unit,2.50,7", lines[1])
	assert.Equal(t, "FLR-010,Flour,kg,0.95,25", lines[2])
}

func TestProductReportCSVAppendsTotal(t *testing.T) {
	report := &ProductReport{
		Item: models.Item{SKU: "WID-001", Name: "Widget"},
		Rows: []ProductRow{
			{LocationID: uuid.New(), LocationName: "Warehouse", Quantity: 7},
			{LocationID: uuid.New(), LocationName: "Shop", Quantity: 3},
		},
		Total: 10,
	}

	out, err := ProductReportCSV(report)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "location,quantity", lines[0])
	assert.Equal(t, "total,10", lines[3])
}

func TestEmptyLocationReportCSVIsHeaderOnly(t *testing.T) {
	out, err := LocationReportCSV(&LocationReport{})
	require.NoError(t, err)
	assert.Equal(t, "sku,name,unit,price,quantity", strings.TrimSpace(string(out)))
}
