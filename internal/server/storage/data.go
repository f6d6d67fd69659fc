package storage

import (
	"context"
	"encoding/json"

	"github.com/iudanet/homesync/internal/models"
)

// Operation описывает мутацию, воспроизводимую клиентом
type Operation struct {
	ID       string               // ID операции в очереди клиента, ключ идемпотентности
	Kind     models.OperationKind // create/update/delete
	DataKind models.DataKind
	EntityID string // серверный id или optimistic id для create
	Payload  json.RawMessage
}

// ApplyResult результат применения операции
type ApplyResult struct {
	Record    *models.Record // сохраненное состояние сущности
	Previous  *models.Record // состояние до операции, nil для create
	Duplicate bool           // операция уже применялась, состояние не менялось
}

// EntityStorage defines interface for household entities persistence
type EntityStorage interface {
	// ListEntities returns non-deleted entities of a data kind ordered by id
	ListEntities(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error)

	// GetEntity returns a single entity including soft-deleted ones
	// Returns ErrEntityNotFound if entity doesn't exist
	GetEntity(ctx context.Context, householdID string, kind models.DataKind, id string) (*models.Record, error)

	// ApplyOperation applies op atomically. Create replaces an optimistic id with a server id.
	// Replaying an already applied operation id returns the current state with Duplicate set.
	// Returns ErrEntityNotFound for update/delete of an unknown entity
	ApplyOperation(ctx context.Context, householdID string, op *Operation) (*ApplyResult, error)

	// BulkShopping marks shopping list items completed/uncompleted or deletes them.
	// Returns ids that were actually changed
	BulkShopping(ctx context.Context, householdID, operation string, ids []string) ([]string, error)
}
