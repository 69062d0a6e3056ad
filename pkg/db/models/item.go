package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/pkg/enums"
)

// Item represents a catalogue entry identified by its SKU.
type Item struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	SKU        string             `gorm:"column:sku;not null;uniqueIndex:items_sku_key"`
	Name       string             `gorm:"column:name;not null"`
	PriceCents int64              `gorm:"column:price_cents;not null;default:0"`
	CostCents  *int64             `gorm:"column:cost_cents"`
	Unit       enums.QuantityUnit `gorm:"column:unit;not null;default:'unit'"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
