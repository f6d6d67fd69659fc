package storage

import (
	"context"

	"github.com/iudanet/homesync/internal/models"
)

// PendingStorage defines the durable ordered queue of mutations awaiting server confirmation.
type PendingStorage interface {
	// AddPendingOperation assigns id, CreatedAt and RetryCount=0 and persists the operation
	// before returning its id.
	AddPendingOperation(ctx context.Context, op *models.PendingOperation) (string, error)

	// GetPendingOperations returns all operations ordered oldest-first
	GetPendingOperations(ctx context.Context) ([]*models.PendingOperation, error)

	// GetHouseholdOperations returns operations of one household ordered oldest-first
	GetHouseholdOperations(ctx context.Context, householdID string) ([]*models.PendingOperation, error)

	// UpdatePendingOperation applies patch to a single operation.
	// Returns ErrOperationNotFound if id is unknown
	UpdatePendingOperation(ctx context.Context, id string, patch models.PendingOperationPatch) error

	// RemovePendingOperation deletes a single operation.
	// Returns ErrOperationNotFound if id is unknown
	RemovePendingOperation(ctx context.Context, id string) error

	// ClearPendingOperations removes every operation of the household (all households when empty)
	ClearPendingOperations(ctx context.Context, householdID string) (int, error)
}
