package models

import "time"

// LocalEntry is one key of a device's durable local storage.
type LocalEntry struct {
	Namespace string    `gorm:"column:namespace;primaryKey"`
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (LocalEntry) TableName() string { return "local_entries" }
