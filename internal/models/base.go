package models

import (
	"time"

	"budgetapp/internal/uuid"

	"gorm.io/gorm"
)

// Base contains the common columns of SQL-backed records.
type Base struct {
	ID        string         `gorm:"size:36;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a time-ordered UUIDv7 to new records.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
