package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/models"
)

// Операции хранятся под ключом NextSequence (big-endian), поэтому обход курсором
// возвращает их в порядке создания. pending_index хранит отображение id -> ключ.

// AddPendingOperation persists op and returns the assigned id
func (s *Storage) AddPendingOperation(ctx context.Context, op *models.PendingOperation) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	op.ID = uuid.New().String()
	op.CreatedAt = s.now().UnixMilli()
	op.RetryCount = 0
	op.Status = models.OperationQueued
	op.LastError = ""

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketPending)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, bucketPendingIndex)
		if err != nil {
			return err
		}

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
		key := seqKey(seq)

		raw, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("failed to marshal pending operation: %w", err)
		}

		if err := b.Put(key, raw); err != nil {
			return fmt.Errorf("failed to save pending operation: %w", err)
		}
		return idx.Put([]byte(op.ID), key)
	})
	if err != nil {
		return "", fmt.Errorf("add pending operation transaction failed: %w", err)
	}

	return op.ID, nil
}

// GetPendingOperations returns all operations ordered oldest-first
func (s *Storage) GetPendingOperations(ctx context.Context) ([]*models.PendingOperation, error) {
	return s.listOperations(func(*models.PendingOperation) bool { return true })
}

// GetHouseholdOperations returns operations of one household ordered oldest-first
func (s *Storage) GetHouseholdOperations(ctx context.Context, householdID string) ([]*models.PendingOperation, error) {
	return s.listOperations(func(op *models.PendingOperation) bool {
		return op.HouseholdID == householdID
	})
}

func (s *Storage) listOperations(keep func(*models.PendingOperation) bool) ([]*models.PendingOperation, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var ops []*models.PendingOperation

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketPending)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			var op models.PendingOperation
			if err := json.Unmarshal(v, &op); err != nil {
				return fmt.Errorf("failed to unmarshal pending operation: %w", err)
			}
			if keep(&op) {
				ops = append(ops, &op)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending operations: %w", err)
	}

	return ops, nil
}

// UpdatePendingOperation applies patch to a single operation
func (s *Storage) UpdatePendingOperation(ctx context.Context, id string, patch models.PendingOperationPatch) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketPending)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, bucketPendingIndex)
		if err != nil {
			return err
		}

		key := idx.Get([]byte(id))
		if key == nil {
			return storage.ErrOperationNotFound
		}
		raw := b.Get(key)
		if raw == nil {
			return storage.ErrOperationNotFound
		}

		var op models.PendingOperation
		if err := json.Unmarshal(raw, &op); err != nil {
			return fmt.Errorf("failed to unmarshal pending operation: %w", err)
		}

		patch.Apply(&op)

		updated, err := json.Marshal(&op)
		if err != nil {
			return fmt.Errorf("failed to marshal pending operation: %w", err)
		}
		return b.Put(key, updated)
	})
}

// RemovePendingOperation deletes a single operation
func (s *Storage) RemovePendingOperation(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketPending)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, bucketPendingIndex)
		if err != nil {
			return err
		}

		key := idx.Get([]byte(id))
		if key == nil {
			return storage.ErrOperationNotFound
		}
		// ключ из индекса нужно скопировать: после Delete память невалидна
		key = append([]byte(nil), key...)

		if err := b.Delete(key); err != nil {
			return fmt.Errorf("failed to delete pending operation: %w", err)
		}
		return idx.Delete([]byte(id))
	})
}

// ClearPendingOperations removes operations of a household, or all of them when householdID is empty
func (s *Storage) ClearPendingOperations(ctx context.Context, householdID string) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketPending)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, bucketPendingIndex)
		if err != nil {
			return err
		}

		type victim struct{ key, id []byte }
		var victims []victim

		if err := b.ForEach(func(k, v []byte) error {
			var op models.PendingOperation
			if err := json.Unmarshal(v, &op); err != nil {
				return fmt.Errorf("failed to unmarshal pending operation: %w", err)
			}
			if householdID == "" || op.HouseholdID == householdID {
				victims = append(victims, victim{key: append([]byte(nil), k...), id: []byte(op.ID)})
			}
			return nil
		}); err != nil {
			return err
		}

		// Удаляем после обхода: модификация bucket внутри ForEach запрещена
		for _, v := range victims {
			if err := b.Delete(v.key); err != nil {
				return err
			}
			if err := idx.Delete(v.id); err != nil {
				return err
			}
		}
		removed = len(victims)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear pending operations transaction failed: %w", err)
	}

	return removed, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
