package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/models"
)

// SetCache stores data under key. The entry timestamp never moves backwards for a key,
// even if the wall clock does.
func (s *Storage) SetCache(ctx context.Context, key string, data json.RawMessage, version int64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketCache)
		if err != nil {
			return err
		}

		entry := models.CacheEntry{
			Data:      data,
			Timestamp: s.now().UnixMilli(),
			Version:   version,
		}

		// Не даем timestamp уменьшиться, если часы ушли назад
		if prev := b.Get([]byte(key)); prev != nil {
			var old models.CacheEntry
			if err := json.Unmarshal(prev, &old); err == nil && old.Timestamp > entry.Timestamp {
				entry.Timestamp = old.Timestamp
			}
		}

		raw, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}

		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to set cache %s: %w", key, err)
	}

	return nil
}

// GetCache retrieves a cache entry by key
func (s *Storage) GetCache(ctx context.Context, key string) (*models.CacheEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entry *models.CacheEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketCache)
		if err != nil {
			return err
		}

		raw := b.Get([]byte(key))
		if raw == nil {
			return storage.ErrCacheNotFound
		}

		entry = &models.CacheEntry{}
		if err := json.Unmarshal(raw, entry); err != nil {
			return fmt.Errorf("failed to unmarshal cache entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteCache removes the entry for key
func (s *Storage) DeleteCache(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketCache)
		if err != nil {
			return err
		}
		return b.Delete([]byte(key))
	})
}
