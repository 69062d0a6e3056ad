package models

import "time"

// Booking holds the reserved quantity and planning note for one SKU.
type Booking struct {
	SKU       string    `gorm:"column:sku;primaryKey"`
	Quantity  int64     `gorm:"column:quantity;not null;default:0"`
	Note      string    `gorm:"column:note;not null;default:''"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
