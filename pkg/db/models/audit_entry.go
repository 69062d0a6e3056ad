package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/pkg/enums"
)

// AuditEntry records one immutable stock movement. Item and location names are
// cached at write time so the trail survives later renames and deletions.
type AuditEntry struct {
	ID               int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Kind             enums.MovementKind `gorm:"column:kind;not null"`
	SKU              string             `gorm:"column:sku;not null;index:audit_entries_sku_idx"`
	ItemName         string             `gorm:"column:item_name;not null"`
	FromLocationID   *uuid.UUID         `gorm:"column:from_location_id;type:uuid"`
	FromLocationName *string            `gorm:"column:from_location_name"`
	ToLocationID     *uuid.UUID         `gorm:"column:to_location_id;type:uuid"`
	ToLocationName   *string            `gorm:"column:to_location_name"`
	Quantity         int64              `gorm:"column:quantity;not null"`
	Reason           *string            `gorm:"column:reason"`
	Note             *string            `gorm:"column:note"`
	ActorID          string             `gorm:"column:actor_id;not null"`
	ActorName        string             `gorm:"column:actor_name;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime;index:audit_entries_created_at_idx"`
}
