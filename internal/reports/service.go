package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/internal/bookings"
	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/internal/locations"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

// Service assembles read-only views joining stock levels with catalogue and
// booking data.
type Service interface {
	Location(ctx context.Context, locationID uuid.UUID) (*LocationReport, error)
	Product(ctx context.Context, sku string) (*ProductReport, error)
}

// LocationReport lists everything on hand at one location.
type LocationReport struct {
	Location models.Location
	Rows     []LocationRow
}

type LocationRow struct {
	SKU        string
	ItemName   string
	Unit       enums.QuantityUnit
	PriceCents int64
	Quantity   int64
}

// ProductReport shows one SKU across all locations, with the total on hand
// and the reserved quantity.
type ProductReport struct {
	Item        models.Item
	Rows        []ProductRow
	Total       int64
	Booked      int64
	BookingNote string
}

type ProductRow struct {
	LocationID   uuid.UUID
	LocationName string
	Quantity     int64
}

type service struct {
	items    catalog.Repository
	places   locations.Repository
	stock    ledger.Repository
	reserved bookings.Repository
}

func NewService(items catalog.Repository, places locations.Repository, stock ledger.Repository, reserved bookings.Repository) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if places == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if reserved == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	return &service{items: items, places: places, stock: stock, reserved: reserved}, nil
}

func (s *service) Location(ctx context.Context, locationID uuid.UUID) (*LocationReport, error) {
	if locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id is required")
	}

	location, err := s.places.GetByID(ctx, locationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("location %s not found", locationID))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}

	levels, err := s.stock.LevelsByLocation(ctx, locationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock levels")
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	bySKU := make(map[string]models.Item, len(items))
	for _, item := range items {
		bySKU[item.SKU] = item
	}

	report := &LocationReport{Location: *location, Rows: make([]LocationRow, 0, len(levels))}
	for _, level := range levels {
		row := LocationRow{SKU: level.SKU, Quantity: level.Quantity}
		if item, ok := bySKU[level.SKU]; ok {
			row.ItemName = item.Name
			row.Unit = item.Unit
			row.PriceCents = item.PriceCents
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

func (s *service) Product(ctx context.Context, sku string) (*ProductReport, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}

	item, err := s.items.GetBySKU(ctx, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sku %q not in catalogue", sku))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	levels, err := s.stock.LevelsBySKU(ctx, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock levels")
	}

	places, err := s.places.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load locations")
	}
	names := make(map[uuid.UUID]string, len(places))
	for _, place := range places {
		names[place.ID] = place.Name
	}

	report := &ProductReport{Item: *item, Rows: make([]ProductRow, 0, len(levels))}
	for _, level := range levels {
		report.Rows = append(report.Rows, ProductRow{
			LocationID:   level.LocationID,
			LocationName: names[level.LocationID],
			Quantity:     level.Quantity,
		})
		report.Total += level.Quantity
	}

	booking, err := s.reserved.Get(ctx, sku)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking != nil {
		report.Booked = booking.Quantity
		report.BookingNote = booking.Note
	}
	return report, nil
}
