package models

import "time"

// Reason is a catalogue entry offered as a movement reason. Seeded reasons
// ship with the schema and cannot be removed through the API.
type Reason struct {
	Code      string    `gorm:"column:code;primaryKey"`
	Label     string    `gorm:"column:label;not null"`
	Seeded    bool      `gorm:"column:seeded;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
