package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/homesync/internal/models"
)

// CacheStorage defines the durable local key/value store of versioned snapshots.
// Reads never touch the network; staleness is checked by the caller with models.IsCacheValid.
type CacheStorage interface {
	// SetCache stores data under key with the given version.
	// Timestamp is assigned at write time and never decreases for a key.
	SetCache(ctx context.Context, key string, data json.RawMessage, version int64) error

	// GetCache returns the entry stored under key.
	// Returns ErrCacheNotFound if the key was never written
	GetCache(ctx context.Context, key string) (*models.CacheEntry, error)

	// DeleteCache removes the entry for key. Missing keys are not an error.
	DeleteCache(ctx context.Context, key string) error
}

// SnapshotKey returns the cache key of the local snapshot for a household data kind.
func SnapshotKey(householdID string, kind models.DataKind) string {
	return "snapshot:" + householdID + ":" + string(kind)
}

// PutTyped serializes v and stores it under key.
func PutTyped[T any](ctx context.Context, s CacheStorage, key string, v T, version int64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}
	return s.SetCache(ctx, key, data, version)
}

// GetTyped reads key and decodes the stored data into T.
func GetTyped[T any](ctx context.Context, s CacheStorage, key string) (*models.TypedCacheEntry[T], error) {
	entry, err := s.GetCache(ctx, key)
	if err != nil {
		return nil, err
	}

	var v T
	if len(entry.Data) > 0 {
		if err := json.Unmarshal(entry.Data, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cache value for %s: %w", key, err)
		}
	}

	return &models.TypedCacheEntry[T]{
		Data:      v,
		Timestamp: entry.Timestamp,
		Version:   entry.Version,
	}, nil
}
