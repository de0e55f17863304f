package storage

import (
	"context"
	"errors"
	"fmt"

	"blog/database"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenSQLite opens (creating if needed) the sqlite file at path.
func OpenSQLite(path string) (*GormStore, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	return NewGormStore(db), nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry database.KVEntry
	result := s.db.WithContext(ctx).Where("key = ?", key).First(&entry)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, result.Error)
	}
	return []byte(entry.Value), nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := database.KVEntry{Key: key, Value: datatypes.JSON(value)}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to set %q: %w", key, result.Error)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&database.KVEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %q: %w", key, result.Error)
	}
	return nil
}

func (s *GormStore) Close() error {
	return database.Close(s.db)
}
