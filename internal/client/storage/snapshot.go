package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iudanet/homesync/internal/models"
)

// Snapshots serializes read-modify-write cycles over the cached snapshots.
// The sync orchestrator, the local mutation service and the realtime subscriber
// share one instance so their updates do not overwrite each other.
type Snapshots struct {
	cache CacheStorage
	mu    sync.Mutex
}

// NewSnapshots creates a snapshot accessor over cache.
func NewSnapshots(cache CacheStorage) *Snapshots {
	return &Snapshots{cache: cache}
}

// Cache возвращает нижележащее хранилище.
func (s *Snapshots) Cache() CacheStorage {
	return s.cache
}

// Load returns the snapshot of (householdID, kind) and its version.
// A snapshot that was never written is empty with version 0.
func (s *Snapshots) Load(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.load(ctx, householdID, kind)
	if err != nil {
		return nil, 0, err
	}
	return entry.Data, entry.Version, nil
}

// Entry returns the snapshot together with its cache timestamp.
func (s *Snapshots) Entry(ctx context.Context, householdID string, kind models.DataKind) (*models.TypedCacheEntry[[]models.Record], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, householdID, kind)
}

// Update loads the snapshot, passes it to fn and stores the result with version+1.
// Nothing is written when fn returns an error.
func (s *Snapshots) Update(ctx context.Context, householdID string, kind models.DataKind, fn func([]models.Record) ([]models.Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.load(ctx, householdID, kind)
	if err != nil {
		return err
	}

	records, err := fn(entry.Data)
	if err != nil {
		return err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if err := PutTyped(ctx, s.cache, SnapshotKey(householdID, kind), records, entry.Version+1); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Snapshots) load(ctx context.Context, householdID string, kind models.DataKind) (*models.TypedCacheEntry[[]models.Record], error) {
	entry, err := GetTyped[[]models.Record](ctx, s.cache, SnapshotKey(householdID, kind))
	if errors.Is(err, ErrCacheNotFound) {
		return &models.TypedCacheEntry[[]models.Record]{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return entry, nil
}

// FindRecord возвращает запись с id или nil.
func FindRecord(records []models.Record, id string) *models.Record {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// UpsertRecord заменяет запись с тем же id или добавляет новую.
func UpsertRecord(records []models.Record, r models.Record) []models.Record {
	for i := range records {
		if records[i].ID == r.ID {
			records[i] = r
			return records
		}
	}
	return append(records, r)
}

// RemoveRecord удаляет запись с id, если она есть.
func RemoveRecord(records []models.Record, id string) []models.Record {
	out := records[:0]
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
