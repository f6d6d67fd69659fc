package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
	"github.com/iudanet/homesync/pkg/api"
)

// rowQueryer общий интерфейс *sql.DB и *sql.Tx для чтения одной строки
type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectEntity = `
	SELECT id, household_id, kind, data, version, deleted, updated_at
	FROM entities
`

// ListEntities returns non-deleted entities of a data kind ordered by id
func (s *Storage) ListEntities(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
	query := selectEntity + `WHERE household_id = ? AND kind = ? AND deleted = 0 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, householdID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		rec, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// GetEntity returns a single entity including soft-deleted ones
func (s *Storage) GetEntity(ctx context.Context, householdID string, kind models.DataKind, id string) (*models.Record, error) {
	return getEntity(ctx, s.db, householdID, kind, id)
}

func getEntity(ctx context.Context, q rowQueryer, householdID string, kind models.DataKind, id string) (*models.Record, error) {
	query := selectEntity + `WHERE household_id = ? AND kind = ? AND id = ?`

	rec, err := scanEntity(q.QueryRowContext(ctx, query, householdID, string(kind), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, err
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*models.Record, error) {
	var (
		rec       models.Record
		kind      string
		data      []byte
		updatedAt int64
	)

	err := row.Scan(&rec.ID, &rec.HouseholdID, &kind, &data, &rec.Version, &rec.Deleted, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entity: %w", err)
	}

	rec.Kind = models.DataKind(kind)
	rec.Data = data
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &rec, nil
}

// ApplyOperation applies op atomically
func (s *Storage) ApplyOperation(ctx context.Context, householdID string, op *storage.Operation) (*storage.ApplyResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Повторная доставка той же операции возвращает текущее состояние
	if op.ID != "" {
		var entityID string
		err := tx.QueryRowContext(ctx,
			`SELECT entity_id FROM applied_operations WHERE operation_id = ?`, op.ID).Scan(&entityID)
		switch {
		case err == nil:
			rec, err := getEntity(ctx, tx, householdID, op.DataKind, entityID)
			if err != nil {
				return nil, err
			}
			return &storage.ApplyResult{Record: rec, Duplicate: true}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("failed to check applied operation: %w", err)
		}
	}

	prev, err := getEntity(ctx, tx, householdID, op.DataKind, op.EntityID)
	if err != nil && !errors.Is(err, storage.ErrEntityNotFound) {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	// updated_at одной сущности не убывает даже при скачке часов назад
	if prev != nil && !now.After(prev.UpdatedAt) {
		now = prev.UpdatedAt.Add(time.Millisecond)
	}

	var rec *models.Record
	switch op.Kind {
	case models.OperationCreate:
		id := op.EntityID
		if id == "" || models.IsOptimisticID(id) {
			id = uuid.New().String()
			prev = nil
		} else if prev != nil {
			return nil, fmt.Errorf("%w: %s", storage.ErrEntityExists, id)
		}
		rec = &models.Record{
			ID:          id,
			HouseholdID: householdID,
			Kind:        op.DataKind,
			Data:        op.Payload,
			Version:     1,
		}

	case models.OperationUpdate:
		if prev == nil || prev.Deleted {
			return nil, fmt.Errorf("%w: %s", storage.ErrEntityNotFound, op.EntityID)
		}
		rec = prev.Clone()
		rec.Data = op.Payload
		rec.Version++

	case models.OperationDelete:
		if prev == nil {
			return nil, fmt.Errorf("%w: %s", storage.ErrEntityNotFound, op.EntityID)
		}
		rec = prev.Clone()
		if !prev.Deleted {
			rec.Deleted = true
			rec.Version++
		}

	default:
		return nil, fmt.Errorf("unknown operation kind %q", op.Kind)
	}

	if prev == nil || !prev.Deleted || op.Kind != models.OperationDelete {
		rec.UpdatedAt = now
		if err := rec.Stamp(); err != nil {
			return nil, err
		}
		if err := upsertEntity(ctx, tx, rec); err != nil {
			return nil, err
		}
	}

	if op.ID != "" {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applied_operations (operation_id, household_id, kind, entity_id, applied_at)
			VALUES (?, ?, ?, ?, ?)
		`, op.ID, householdID, string(op.DataKind), rec.ID, now.UnixMilli())
		if err != nil {
			return nil, fmt.Errorf("failed to record applied operation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &storage.ApplyResult{Record: rec, Previous: prev}, nil
}

// BulkShopping marks shopping list items completed/uncompleted or deletes them
func (s *Storage) BulkShopping(ctx context.Context, householdID, operation string, ids []string) ([]string, error) {
	switch operation {
	case api.BulkComplete, api.BulkUncomplete, api.BulkDelete:
	default:
		return nil, fmt.Errorf("unknown bulk operation %q", operation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Truncate(time.Millisecond)
	changed := make([]string, 0, len(ids))

	for _, id := range ids {
		rec, err := getEntity(ctx, tx, householdID, models.KindShoppingList, id)
		if errors.Is(err, storage.ErrEntityNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.Deleted {
			continue
		}

		if operation == api.BulkDelete {
			rec.Deleted = true
		} else {
			item, err := models.DecodeData[models.ShoppingListItem](rec)
			if err != nil {
				return nil, err
			}
			want := operation == api.BulkComplete
			if item.Completed == want {
				continue
			}
			if rec.Data, err = models.PatchData(rec.Data, map[string]any{"completed": want}); err != nil {
				return nil, fmt.Errorf("failed to patch shopping item %s: %w", id, err)
			}
		}

		rec.Version++
		if now.After(rec.UpdatedAt) {
			rec.UpdatedAt = now
		} else {
			rec.UpdatedAt = rec.UpdatedAt.Add(time.Millisecond)
		}
		if err := rec.Stamp(); err != nil {
			return nil, err
		}
		if err := upsertEntity(ctx, tx, rec); err != nil {
			return nil, err
		}
		changed = append(changed, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return changed, nil
}

func upsertEntity(ctx context.Context, tx *sql.Tx, rec *models.Record) error {
	query := `
		INSERT INTO entities (household_id, kind, id, data, version, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(household_id, kind, id) DO UPDATE SET
			data = excluded.data,
			version = excluded.version,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`

	_, err := tx.ExecContext(ctx, query,
		rec.HouseholdID,
		string(rec.Kind),
		rec.ID,
		[]byte(rec.Data),
		rec.Version,
		rec.Deleted,
		rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrHouseholdNotFound
		}
		return fmt.Errorf("failed to upsert entity: %w", err)
	}
	return nil
}
