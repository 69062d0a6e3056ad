package backup

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
)

// Snapshot is the wire form of a full-state export. Stock levels are flattened
// into a map keyed "{sku}::{locationId}".
type Snapshot struct {
	Version         int                  `json:"version"`
	ExportedAt      time.Time            `json:"exported_at"`
	Items           []SnapshotItem       `json:"items"`
	Locations       []SnapshotLocation   `json:"locations"`
	StockByLocation map[string]int64     `json:"stock_by_location"`
	Bookings        []SnapshotBooking    `json:"bookings,omitempty"`
	AuditTrail      []SnapshotAuditEntry `json:"audit_trail"`
}

const snapshotVersion = 1

type SnapshotItem struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	CostCents  *int64    `json:"cost_cents,omitempty"`
	Unit       string    `json:"unit"`
}

type SnapshotLocation struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SnapshotBooking struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

type SnapshotAuditEntry struct {
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

// StockKey builds the map key for one stock level.
func StockKey(sku string, locationID uuid.UUID) string {
	return sku + "::" + locationID.String()
}

// ParseStockKey splits a map key back into SKU and location id. The split is
// on the last separator so a SKU containing "::" stays intact.
func ParseStockKey(key string) (string, uuid.UUID, error) {
	idx := strings.LastIndex(key, "::")
	if idx <= 0 {
		return "", uuid.Nil, fmt.Errorf("malformed stock key %q", key)
	}
	locationID, err := uuid.Parse(key[idx+2:])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("malformed stock key %q: %w", key, err)
	}
	return key[:idx], locationID, nil
}

func snapshotFromState(state *State, now time.Time) *Snapshot {
	snap := &Snapshot{
		Version:         snapshotVersion,
		ExportedAt:      now.UTC(),
		Items:           make([]SnapshotItem, 0, len(state.Items)),
		Locations:       make([]SnapshotLocation, 0, len(state.Locations)),
		StockByLocation: make(map[string]int64, len(state.Levels)),
		AuditTrail:      make([]SnapshotAuditEntry, 0, len(state.AuditTrail)),
	}
	for _, item := range state.Items {
		snap.Items = append(snap.Items, SnapshotItem{
			ID: item.ID, SKU: item.SKU, Name: item.Name,
			PriceCents: item.PriceCents, CostCents: item.CostCents,
			Unit: item.Unit.String(),
		})
	}
	for _, location := range state.Locations {
		snap.Locations = append(snap.Locations, SnapshotLocation{ID: location.ID, Name: location.Name})
	}
	for _, level := range state.Levels {
		snap.StockByLocation[StockKey(level.SKU, level.LocationID)] = level.Quantity
	}
	for _, booking := range state.Bookings {
		snap.Bookings = append(snap.Bookings, SnapshotBooking{
			SKU: booking.SKU, Quantity: booking.Quantity, Note: booking.Note,
		})
	}
	for _, entry := range state.AuditTrail {
		snap.AuditTrail = append(snap.AuditTrail, SnapshotAuditEntry{
			ID: entry.ID, Kind: entry.Kind.String(), SKU: entry.SKU, ItemName: entry.ItemName,
			FromLocationID: entry.FromLocationID, FromLocationName: entry.FromLocationName,
			ToLocationID: entry.ToLocationID, ToLocationName: entry.ToLocationName,
			Quantity: entry.Quantity, Reason: entry.Reason, Note: entry.Note,
			ActorID: entry.ActorID, ActorName: entry.ActorName, CreatedAt: entry.CreatedAt,
		})
	}
	return snap
}

func stateFromSnapshot(snap *Snapshot) (*State, error) {
	state := &State{
		Items:      make([]models.Item, 0, len(snap.Items)),
		Locations:  make([]models.Location, 0, len(snap.Locations)),
		Levels:     make([]models.StockLevel, 0, len(snap.StockByLocation)),
		Bookings:   make([]models.Booking, 0, len(snap.Bookings)),
		AuditTrail: make([]models.AuditEntry, 0, len(snap.AuditTrail)),
	}

	for _, item := range snap.Items {
		if item.SKU == "" {
			return nil, fmt.Errorf("item %s has no sku", item.ID)
		}
		unit, err := enums.ParseQuantityUnitStrict(item.Unit)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.SKU, err)
		}
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		state.Items = append(state.Items, models.Item{
			ID: id, SKU: item.SKU, Name: item.Name,
			PriceCents: item.PriceCents, CostCents: item.CostCents, Unit: unit,
		})
	}

	for _, location := range snap.Locations {
		if location.ID == uuid.Nil || location.Name == "" {
			return nil, fmt.Errorf("location %s needs an id and a name", location.ID)
		}
		state.Locations = append(state.Locations, models.Location{ID: location.ID, Name: location.Name})
	}

	for key, quantity := range snap.StockByLocation {
		sku, locationID, err := ParseStockKey(key)
		if err != nil {
			return nil, err
		}
		if quantity < 0 {
			return nil, fmt.Errorf("stock key %q has negative quantity %d", key, quantity)
		}
		state.Levels = append(state.Levels, models.StockLevel{
			SKU: sku, LocationID: locationID, Quantity: quantity,
		})
	}

	for _, booking := range snap.Bookings {
		if booking.Quantity < 0 {
			return nil, fmt.Errorf("booking for %q has negative quantity", booking.SKU)
		}
		state.Bookings = append(state.Bookings, models.Booking{
			SKU: booking.SKU, Quantity: booking.Quantity, Note: booking.Note,
		})
	}

	for _, entry := range snap.AuditTrail {
		kind, err := enums.ParseMovementKind(entry.Kind)
		if err != nil {
			return nil, fmt.Errorf("audit entry %d: %w", entry.ID, err)
		}
		state.AuditTrail = append(state.AuditTrail, models.AuditEntry{
			ID: entry.ID, Kind: kind, SKU: entry.SKU, ItemName: entry.ItemName,
			FromLocationID: entry.FromLocationID, FromLocationName: entry.FromLocationName,
			ToLocationID: entry.ToLocationID, ToLocationName: entry.ToLocationName,
			Quantity: entry.Quantity, Reason: entry.Reason, Note: entry.Note,
			ActorID: entry.ActorID, ActorName: entry.ActorName, CreatedAt: entry.CreatedAt,
		})
	}

	return state, nil
}
