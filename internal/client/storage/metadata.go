package storage

import (
	"context"

	"github.com/iudanet/homesync/internal/models"
)

//go:generate moq -out watermarkstorage_mock.go . WatermarkStorage

// WatermarkStorage stores the last fully reconciled instant per (household, data kind)
type WatermarkStorage interface {
	// SaveLastSyncTimestamp advances the watermark. Values lower than the stored one are ignored.
	SaveLastSyncTimestamp(ctx context.Context, householdID string, kind models.DataKind, timestamp int64) error

	// GetLastSyncTimestamp retrieves the watermark in epoch-ms
	// Returns 0 if no sync has been performed yet
	GetLastSyncTimestamp(ctx context.Context, householdID string, kind models.DataKind) (int64, error)
}

// ConflictStorage keeps conflicts that wait for a manual decision.
type ConflictStorage interface {
	SaveConflict(ctx context.Context, conflict *models.SyncConflict) error
	GetConflicts(ctx context.Context, householdID string, kind models.DataKind) ([]*models.SyncConflict, error)
	// DeleteConflict returns ErrConflictNotFound if there is no open conflict for id
	DeleteConflict(ctx context.Context, householdID string, kind models.DataKind, id string) error
}
