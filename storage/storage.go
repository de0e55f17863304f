// Package storage is the persistent key-value store the front end keeps its
// state in: auth token, theme, and the demo mode post list.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	// Get returns ErrNotFound when key has never been set or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value under key into v. The returned bool is false when
// the key does not exist, in which case v is left untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// GetString reads a value written by SetString, returning fallback when unset.
func GetString(ctx context.Context, s Store, key, fallback string) (string, error) {
	var value string
	found, err := GetJSON(ctx, s, key, &value)
	if err != nil || !found {
		return fallback, err
	}
	return value, nil
}

func SetString(ctx context.Context, s Store, key, value string) error {
	return SetJSON(ctx, s, key, value)
}
