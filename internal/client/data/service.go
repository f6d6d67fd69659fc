package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/pkg/api"
)

var (
	// ErrNotFound запись отсутствует в локальном снимке
	ErrNotFound = errors.New("record not found")
	// ErrInvalidData полезная нагрузка не является JSON объектом
	ErrInvalidData = errors.New("data must be a JSON object")
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс локальных мутаций household.
// Каждая мутация сразу видна в локальном снимке и ставится в очередь на сервер.
type Service interface {
	Create(ctx context.Context, householdID string, kind models.DataKind, data json.RawMessage) (*models.Record, error)
	Update(ctx context.Context, householdID string, kind models.DataKind, id string, patch json.RawMessage) (*models.Record, error)
	Delete(ctx context.Context, householdID string, kind models.DataKind, id string) error

	Get(ctx context.Context, householdID string, kind models.DataKind, id string) (*models.Record, error)
	List(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error)

	// ApplyRemote применяет изменение, полученное по realtime каналу
	ApplyRemote(ctx context.Context, householdID string, change api.Change) error
}

// service handles optimistic local mutations
type service struct {
	pending   storage.PendingStorage
	snapshots *storage.Snapshots
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new data service
func NewService(pending storage.PendingStorage, snapshots *storage.Snapshots, logger *slog.Logger) Service {
	return &service{
		pending:   pending,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Create adds a new entity under an optimistic id
func (s *service) Create(ctx context.Context, householdID string, kind models.DataKind, data json.RawMessage) (*models.Record, error) {
	if !isObject(data) {
		return nil, ErrInvalidData
	}

	r := &models.Record{
		ID:          models.GenerateOptimisticID(),
		HouseholdID: householdID,
		Kind:        kind,
		UpdatedAt:   s.now().UTC(),
		Data:        data,
	}
	if err := r.Stamp(); err != nil {
		return nil, fmt.Errorf("failed to prepare record: %w", err)
	}

	if err := s.enqueue(ctx, models.OperationCreate, r); err != nil {
		return nil, err
	}
	if err := s.upsert(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Debug("Entity created locally", "household_id", householdID, "kind", kind, "id", r.ID)
	return r, nil
}

// Update merges patch into the stored data: fields present in patch replace stored ones
func (s *service) Update(ctx context.Context, householdID string, kind models.DataKind, id string, patch json.RawMessage) (*models.Record, error) {
	if !isObject(patch) {
		return nil, ErrInvalidData
	}

	current, err := s.Get(ctx, householdID, kind, id)
	if err != nil {
		return nil, err
	}

	merged, err := mergeObjects(current.Data, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge update: %w", err)
	}

	r := current.Clone()
	r.Data = merged
	r.UpdatedAt = s.now().UTC()
	if err := r.Stamp(); err != nil {
		return nil, fmt.Errorf("failed to prepare record: %w", err)
	}

	if err := s.enqueue(ctx, models.OperationUpdate, r); err != nil {
		return nil, err
	}
	if err := s.upsert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the entity locally.
// An entity that never reached the server is dropped together with its queued operations.
func (s *service) Delete(ctx context.Context, householdID string, kind models.DataKind, id string) error {
	if _, err := s.Get(ctx, householdID, kind, id); err != nil {
		return err
	}

	if models.IsOptimisticID(id) {
		if err := s.dropQueued(ctx, householdID, kind, id); err != nil {
			return err
		}
	} else {
		r := &models.Record{ID: id, HouseholdID: householdID, Kind: kind, Deleted: true}
		if err := s.enqueue(ctx, models.OperationDelete, r); err != nil {
			return err
		}
	}

	err := s.snapshots.Update(ctx, householdID, kind, func(records []models.Record) ([]models.Record, error) {
		return storage.RemoveRecord(records, id), nil
	})
	if err != nil {
		return apperr.Persistence(err, "apply local delete")
	}
	return nil
}

// Get returns a single entity from the local snapshot
func (s *service) Get(ctx context.Context, householdID string, kind models.DataKind, id string) (*models.Record, error) {
	records, _, err := s.snapshots.Load(ctx, householdID, kind)
	if err != nil {
		return nil, apperr.Persistence(err, "load snapshot")
	}
	r := storage.FindRecord(records, id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return r.Clone(), nil
}

// List returns the local snapshot of a data kind
func (s *service) List(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
	records, _, err := s.snapshots.Load(ctx, householdID, kind)
	if err != nil {
		return nil, apperr.Persistence(err, "load snapshot")
	}
	return records, nil
}

// ApplyRemote применяет событие другого устройства.
// Сущности с локальными правками, ждущими replay, не трогаются: их сверит следующий цикл синхронизации.
func (s *service) ApplyRemote(ctx context.Context, householdID string, change api.Change) error {
	ops, err := s.pending.GetHouseholdOperations(ctx, householdID)
	if err != nil {
		return apperr.Persistence(err, "load pending operations")
	}
	busy := make(map[string]bool)
	for _, op := range ops {
		if op.Target.Kind == change.Kind {
			busy[op.Target.EntityID] = true
		}
	}

	err = s.snapshots.Update(ctx, householdID, change.Kind, func(records []models.Record) ([]models.Record, error) {
		for _, id := range change.DeleteIDs {
			if !busy[id] {
				records = storage.RemoveRecord(records, id)
			}
		}
		if up := change.Upsert; up != nil && !busy[up.ID] {
			if existing := storage.FindRecord(records, up.ID); existing == nil || !existing.IsNewerThan(up) {
				records = storage.UpsertRecord(records, *up)
			}
		}
		return records, nil
	})
	if err != nil {
		return apperr.Persistence(err, "apply remote change")
	}
	return nil
}

func (s *service) enqueue(ctx context.Context, kind models.OperationKind, r *models.Record) error {
	op := &models.PendingOperation{
		Kind:        kind,
		HouseholdID: r.HouseholdID,
		Target:      models.Target{Kind: r.Kind, EntityID: r.ID},
	}
	if kind != models.OperationDelete {
		op.Payload = r.Data
	}
	if _, err := s.pending.AddPendingOperation(ctx, op); err != nil {
		return apperr.Persistence(err, "queue local mutation")
	}
	return nil
}

func (s *service) upsert(ctx context.Context, r *models.Record) error {
	err := s.snapshots.Update(ctx, r.HouseholdID, r.Kind, func(records []models.Record) ([]models.Record, error) {
		return storage.UpsertRecord(records, *r.Clone()), nil
	})
	if err != nil {
		return apperr.Persistence(err, "apply local mutation")
	}
	return nil
}

func (s *service) dropQueued(ctx context.Context, householdID string, kind models.DataKind, id string) error {
	ops, err := s.pending.GetHouseholdOperations(ctx, householdID)
	if err != nil {
		return apperr.Persistence(err, "load pending operations")
	}
	for _, op := range ops {
		if op.Target.Kind != kind || op.Target.EntityID != id {
			continue
		}
		if err := s.pending.RemovePendingOperation(ctx, op.ID); err != nil && !errors.Is(err, storage.ErrOperationNotFound) {
			return apperr.Persistence(err, "drop queued operation")
		}
	}
	return nil
}

func isObject(data json.RawMessage) bool {
	var fields map[string]json.RawMessage
	return json.Unmarshal(data, &fields) == nil && fields != nil
}

func mergeObjects(base, patch json.RawMessage) (json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(base) > 0 {
		if err := json.Unmarshal(base, &fields); err != nil {
			return nil, err
		}
	}
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, err
	}
	for k, v := range changes {
		fields[k] = v
	}
	return json.Marshal(fields)
}
