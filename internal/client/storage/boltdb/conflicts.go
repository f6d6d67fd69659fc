package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/models"
)

func conflictPrefix(householdID string, kind models.DataKind) string {
	return householdID + "/" + string(kind) + "/"
}

// SaveConflict stores an open conflict, replacing a previous one for the same entity
func (s *Storage) SaveConflict(ctx context.Context, conflict *models.SyncConflict) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	raw, err := json.Marshal(conflict)
	if err != nil {
		return fmt.Errorf("failed to marshal conflict: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}
		key := conflictPrefix(conflict.HouseholdID, conflict.Kind) + conflict.ID
		return b.Put([]byte(key), raw)
	})
}

// GetConflicts returns open conflicts of a household data kind ordered by entity id
func (s *Storage) GetConflicts(ctx context.Context, householdID string, kind models.DataKind) ([]*models.SyncConflict, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}
	prefix := []byte(conflictPrefix(householdID, kind))
	var conflicts []*models.SyncConflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}

		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var conflict models.SyncConflict
			if err := json.Unmarshal(v, &conflict); err != nil {
				return fmt.Errorf("failed to unmarshal conflict: %w", err)
			}
			conflicts = append(conflicts, &conflict)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get conflicts: %w", err)
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].ID < conflicts[j].ID })
	return conflicts, nil
}

// DeleteConflict removes an open conflict
func (s *Storage) DeleteConflict(ctx context.Context, householdID string, kind models.DataKind, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketConflicts)
		if err != nil {
			return err
		}
		key := []byte(conflictPrefix(householdID, kind) + id)
		if b.Get(key) == nil {
			return storage.ErrConflictNotFound
		}
		return b.Delete(key)
	})
}
