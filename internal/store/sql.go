package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetapp/internal/models"
)

// SQL is a Store backed by the kv_entries table.
type SQL struct {
	db *gorm.DB
}

// NewSQL creates a Store on an already migrated database.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

// Get implements Store.
func (s *SQL) Get(key string) (string, bool, error) {
	var entry models.KVEntry
	err := s.db.Where("store_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set implements Store with an upsert on the key.
func (s *SQL) Set(key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQL) Remove(key string) error {
	if err := s.db.Where("store_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
