package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/internal/movements"
	"github.com/northquay/stocktrail-backend/internal/reports"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
)

type itemDTO struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	CostCents  *int64    `json:"cost_cents,omitempty"`
	Unit       string    `json:"unit"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toItemDTO(item *models.Item) itemDTO {
	return itemDTO{
		ID:         item.ID,
		SKU:        item.SKU,
		Name:       item.Name,
		PriceCents: item.PriceCents,
		CostCents:  item.CostCents,
		Unit:       item.Unit.String(),
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}

func toItemDTOs(items []models.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for i := range items {
		out = append(out, toItemDTO(&items[i]))
	}
	return out
}

type locationDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toLocationDTO(location *models.Location) locationDTO {
	return locationDTO{ID: location.ID, Name: location.Name, CreatedAt: location.CreatedAt}
}

func toLocationDTOs(locations []models.Location) []locationDTO {
	out := make([]locationDTO, 0, len(locations))
	for i := range locations {
		out = append(out, toLocationDTO(&locations[i]))
	}
	return out
}

type stockLevelDTO struct {
	SKU        string    `json:"sku"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toStockLevelDTO(level *models.StockLevel) stockLevelDTO {
	return stockLevelDTO{
		SKU:        level.SKU,
		LocationID: level.LocationID,
		Quantity:   level.Quantity,
		UpdatedAt:  level.UpdatedAt,
	}
}

func toStockLevelDTOs(levels []models.StockLevel) []stockLevelDTO {
	out := make([]stockLevelDTO, 0, len(levels))
	for i := range levels {
		out = append(out, toStockLevelDTO(&levels[i]))
	}
	return out
}

type auditEntryDTO struct {
	ID               int64      `json:"id"`
	Kind             string     `json:"kind"`
	SKU              string     `json:"sku"`
	ItemName         string     `json:"item_name"`
	FromLocationID   *uuid.UUID `json:"from_location_id,omitempty"`
	FromLocationName *string    `json:"from_location_name,omitempty"`
	ToLocationID     *uuid.UUID `json:"to_location_id,omitempty"`
	ToLocationName   *string    `json:"to_location_name,omitempty"`
	Quantity         int64      `json:"quantity"`
	Reason           *string    `json:"reason,omitempty"`
	Note             *string    `json:"note,omitempty"`
	ActorID          string     `json:"actor_id"`
	ActorName        string     `json:"actor_name"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toAuditEntryDTO(entry *models.AuditEntry) auditEntryDTO {
	return auditEntryDTO{
		ID:               entry.ID,
		Kind:             entry.Kind.String(),
		SKU:              entry.SKU,
		ItemName:         entry.ItemName,
		FromLocationID:   entry.FromLocationID,
		FromLocationName: entry.FromLocationName,
		ToLocationID:     entry.ToLocationID,
		ToLocationName:   entry.ToLocationName,
		Quantity:         entry.Quantity,
		Reason:           entry.Reason,
		Note:             entry.Note,
		ActorID:          entry.ActorID,
		ActorName:        entry.ActorName,
		CreatedAt:        entry.CreatedAt,
	}
}

func toAuditEntryDTOs(entries []models.AuditEntry) []auditEntryDTO {
	out := make([]auditEntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, toAuditEntryDTO(&entries[i]))
	}
	return out
}

type movementResultDTO struct {
	Entry    *auditEntryDTO `json:"entry,omitempty"`
	Quantity int64          `json:"quantity"`
}

func toMovementResultDTO(result *movements.MovementResult) movementResultDTO {
	dto := movementResultDTO{Quantity: result.Quantity}
	if result.Entry != nil {
		entry := toAuditEntryDTO(result.Entry)
		dto.Entry = &entry
	}
	return dto
}

type transferResultDTO struct {
	Entry        *auditEntryDTO `json:"entry,omitempty"`
	FromQuantity int64          `json:"from_quantity"`
	ToQuantity   int64          `json:"to_quantity"`
}

func toTransferResultDTO(result *movements.TransferResult) transferResultDTO {
	dto := transferResultDTO{FromQuantity: result.FromQuantity, ToQuantity: result.ToQuantity}
	if result.Entry != nil {
		entry := toAuditEntryDTO(result.Entry)
		dto.Entry = &entry
	}
	return dto
}

type reasonDTO struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Seeded bool   `json:"seeded"`
}

func toReasonDTOs(reasons []models.Reason) []reasonDTO {
	out := make([]reasonDTO, 0, len(reasons))
	for _, reason := range reasons {
		out = append(out, reasonDTO{Code: reason.Code, Label: reason.Label, Seeded: reason.Seeded})
	}
	return out
}

type bookingDTO struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
	Note     string `json:"note"`
}

func toBookingDTO(booking *models.Booking) bookingDTO {
	return bookingDTO{SKU: booking.SKU, Quantity: booking.Quantity, Note: booking.Note}
}

type locationReportDTO struct {
	Location locationDTO            `json:"location"`
	Rows     []locationReportRowDTO `json:"rows"`
}

type locationReportRowDTO struct {
	SKU        string `json:"sku"`
	ItemName   string `json:"item_name"`
	Unit       string `json:"unit"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
}

func toLocationReportDTO(report *reports.LocationReport) locationReportDTO {
	dto := locationReportDTO{
		Location: toLocationDTO(&report.Location),
		Rows:     make([]locationReportRowDTO, 0, len(report.Rows)),
	}
	for _, row := range report.Rows {
		dto.Rows = append(dto.Rows, locationReportRowDTO{
			SKU:        row.SKU,
			ItemName:   row.ItemName,
			Unit:       row.Unit.String(),
			PriceCents: row.PriceCents,
			Quantity:   row.Quantity,
		})
	}
	return dto
}

type productReportDTO struct {
	Item        itemDTO               `json:"item"`
	Rows        []productReportRowDTO `json:"rows"`
	Total       int64                 `json:"total"`
	Booked      int64                 `json:"booked"`
	BookingNote string                `json:"booking_note,omitempty"`
}

type productReportRowDTO struct {
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name"`
	Quantity     int64     `json:"quantity"`
}

func toProductReportDTO(report *reports.ProductReport) productReportDTO {
	dto := productReportDTO{
		Item:        toItemDTO(&report.Item),
		Rows:        make([]productReportRowDTO, 0, len(report.Rows)),
		Total:       report.Total,
		Booked:      report.Booked,
		BookingNote: report.BookingNote,
	}
	for _, row := range report.Rows {
		dto.Rows = append(dto.Rows, productReportRowDTO{
			LocationID:   row.LocationID,
			LocationName: row.LocationName,
			Quantity:     row.Quantity,
		})
	}
	return dto
}
