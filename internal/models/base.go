package models

import (
	"time"
)

// BaseModel provides shared columns for all tables. IDs are numeric because
// the cache orders entities by ID.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
