package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel stores the on-hand quantity for one SKU at one location.
// Quantity is guarded by a non-negative CHECK constraint in the schema.
type StockLevel struct {
	SKU        string    `gorm:"column:sku;primaryKey"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
	Quantity   int64     `gorm:"column:quantity;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
