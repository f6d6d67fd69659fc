package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/models"
)

func watermarkKey(householdID string, kind models.DataKind) []byte {
	return []byte("watermark/" + householdID + "/" + string(kind))
}

// SaveLastSyncTimestamp advances the watermark of (household, kind).
// The watermark is monotonic: a smaller timestamp leaves the stored value untouched.
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, householdID string, kind models.DataKind, timestamp int64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		key := watermarkKey(householdID, kind)
		if current := b.Get(key); current != nil {
			if int64(binary.BigEndian.Uint64(current)) >= timestamp {
				return nil
			}
		}

		// Конвертируем int64 в bytes
		timestampBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(timestampBytes, uint64(timestamp))

		if err := b.Put(key, timestampBytes); err != nil {
			return fmt.Errorf("failed to save last sync timestamp: %w", err)
		}

		return nil
	})
}

// GetLastSyncTimestamp retrieves the watermark of (household, kind)
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context, householdID string, kind models.DataKind) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}
	var timestamp int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		timestampBytes := b.Get(watermarkKey(householdID, kind))
		if timestampBytes == nil {
			// Первая синхронизация
			timestamp = 0
			return nil
		}

		timestamp = int64(binary.BigEndian.Uint64(timestampBytes))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	return timestamp, nil
}
