package database

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one key of the key-value store. Values are always JSON documents.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     datatypes.JSON
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
