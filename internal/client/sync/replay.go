package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/models"
)

// ReplayReport итог воспроизведения очереди
type ReplayReport struct {
	Errors    map[string]error // household -> ошибка, остановившая replay
	Applied   int              // операции, подтвержденные сервером и удаленные из очереди
	Parked    int              // операции, припаркованные в этом проходе
	Held      int              // операции, ждущие решения открытого конфликта
	Remaining int              // операции, оставшиеся в очереди (включая parked и held)
}

func (r *ReplayReport) add(householdID string, other *ReplayReport, err error) {
	r.Applied += other.Applied
	r.Parked += other.Parked
	r.Held += other.Held
	r.Remaining += other.Remaining
	if err != nil {
		if r.Errors == nil {
			r.Errors = make(map[string]error)
		}
		r.Errors[householdID] = err
	}
}

func (s *service) householdLock(householdID string) *stdsync.Mutex {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()
	l, ok := s.replayLocks[householdID]
	if !ok {
		l = &stdsync.Mutex{}
		s.replayLocks[householdID] = l
	}
	return l
}

// ReplayAll воспроизводит очереди всех household параллельно.
// Ошибка одного household не прерывает остальные; она попадает в ReplayReport.Errors.
func (s *service) ReplayAll(ctx context.Context) (*ReplayReport, error) {
	ops, err := s.store.GetPendingOperations(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "load pending operations")
	}

	seen := make(map[string]bool)
	var households []string
	for _, op := range ops {
		if !seen[op.HouseholdID] {
			seen[op.HouseholdID] = true
			households = append(households, op.HouseholdID)
		}
	}

	var (
		mu     stdsync.Mutex
		report ReplayReport
		g      errgroup.Group
	)
	g.SetLimit(4)

	for _, h := range households {
		g.Go(func() error {
			r, err := s.replayHousehold(ctx, h)
			mu.Lock()
			report.add(h, r, err)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return &report, err
	}
	return &report, nil
}

// replayHousehold воспроизводит операции household строго в порядке создания.
//
// Успешная операция удаляется из очереди, а подтвержденная сервером запись
// попадает в снимок. Временная ошибка увеличивает RetryCount и останавливает
// replay household до следующего цикла; после maxRetries операция паркуется.
// Неповторяемая ошибка (отказ сервера, некорректный ответ) паркует операцию сразу.
// Ошибка аутентификации или доступа останавливает replay, не трогая очередь.
//
// Операции сущностей с открытым конфликтом ждут ResolveManual; порядок остальных
// операций сохраняется.
func (s *service) replayHousehold(ctx context.Context, householdID string) (*ReplayReport, error) {
	lock := s.householdLock(householdID)
	lock.Lock()
	defer lock.Unlock()

	report := &ReplayReport{}
	held := &heldEntities{store: s.store, householdID: householdID}

	// очередь перечитывается на каждом шаге: подтверждение create переписывает
	// ссылки последующих операций на серверный id
	for {
		ops, err := s.store.GetHouseholdOperations(ctx, householdID)
		if err != nil {
			return report, apperr.Persistence(err, "load household operations")
		}

		op, heldCount, err := firstQueued(ctx, ops, held)
		if err != nil {
			return report, apperr.Persistence(err, "load open conflicts")
		}
		finish := func() {
			report.Remaining = len(ops)
			report.Held = heldCount
		}
		if op == nil {
			finish()
			return report, nil
		}
		if err := ctx.Err(); err != nil {
			finish()
			return report, err
		}

		stored, err := s.api.ApplyOperation(ctx, op)
		if err != nil {
			if ctx.Err() != nil {
				finish()
				return report, ctx.Err()
			}
			if !apperr.IsCategorized(err) {
				err = apperr.Transient(err, "apply pending operation")
			}
			if apperr.Is(err, apperr.ErrAuthentication) || apperr.Is(err, apperr.ErrAuthorization) {
				s.logger.Warn("Replay stopped, operation kept as is",
					"operation_id", op.ID, "household_id", householdID, slog.Any("error", err))
				finish()
				return report, err
			}
			parked, perr := s.recordFailure(ctx, op, err)
			if perr != nil {
				return report, perr
			}
			if parked {
				report.Parked++
			}
			// неповторяемая ошибка уже припарковала операцию, остальные идут дальше
			if !apperr.IsRetryable(err) {
				continue
			}
			finish()
			return report, err
		}

		if err := s.store.RemovePendingOperation(ctx, op.ID); err != nil {
			return report, apperr.Persistence(err, "remove replayed operation")
		}
		report.Applied++

		if err := s.applyConfirmed(ctx, op, stored); err != nil {
			return report, apperr.Persistence(err, "apply confirmed record")
		}
	}
}

// heldEntities лениво загружает открытые конфликты household по видам данных
type heldEntities struct {
	store       storage.ConflictStorage
	byKind      map[models.DataKind]map[string]bool
	householdID string
}

func (h *heldEntities) contains(ctx context.Context, kind models.DataKind, entityID string) (bool, error) {
	if h.byKind == nil {
		h.byKind = make(map[models.DataKind]map[string]bool)
	}
	ids, ok := h.byKind[kind]
	if !ok {
		conflicts, err := h.store.GetConflicts(ctx, h.householdID, kind)
		if err != nil {
			return false, err
		}
		ids = make(map[string]bool, len(conflicts))
		for _, c := range conflicts {
			ids[c.ID] = true
		}
		h.byKind[kind] = ids
	}
	return ids[entityID], nil
}

// firstQueued возвращает первую операцию, готовую к replay, и число операций,
// пропущенных из-за открытых конфликтов
func firstQueued(ctx context.Context, ops []*models.PendingOperation, held *heldEntities) (*models.PendingOperation, int, error) {
	var (
		first *models.PendingOperation
		count int
	)
	for _, op := range ops {
		if op.IsParked() {
			continue
		}
		blocked, err := held.contains(ctx, op.Target.Kind, op.Target.EntityID)
		if err != nil {
			return nil, 0, err
		}
		if blocked {
			count++
			continue
		}
		if first == nil {
			first = op
		}
	}
	return first, count, nil
}

// recordFailure увеличивает RetryCount и паркует операцию по достижении лимита
func (s *service) recordFailure(ctx context.Context, op *models.PendingOperation, cause error) (bool, error) {
	retries := op.RetryCount + 1
	lastError := cause.Error()
	patch := models.PendingOperationPatch{RetryCount: &retries, LastError: &lastError}

	parked := retries >= s.maxRetries || !apperr.IsRetryable(cause)
	if parked {
		status := models.OperationParked
		patch.Status = &status
	}

	if err := s.store.UpdatePendingOperation(ctx, op.ID, patch); err != nil {
		return false, apperr.Persistence(err, "record replay failure")
	}

	if parked {
		s.logger.Warn("Pending operation parked",
			"operation_id", op.ID,
			"household_id", op.HouseholdID,
			"kind", op.Kind,
			"entity_id", op.Target.EntityID,
			"retry_count", retries,
			slog.Any("error", cause))
	} else {
		s.logger.Info("Pending operation replay failed",
			"operation_id", op.ID,
			"retry_count", retries,
			slog.Any("error", cause))
	}
	return parked, nil
}

// applyConfirmed переносит подтвержденную сервером запись в снимок.
// Для create с optimistic id запись и последующие операции переводятся на серверный id.
func (s *service) applyConfirmed(ctx context.Context, op *models.PendingOperation, stored *models.Record) error {
	kind := op.Target.Kind
	tempID := op.Target.EntityID

	err := s.snapshots.Update(ctx, op.HouseholdID, kind, func(records []models.Record) ([]models.Record, error) {
		records = storage.RemoveRecord(records, tempID)
		if op.Kind == models.OperationDelete || stored == nil || stored.Deleted {
			return records, nil
		}
		return storage.UpsertRecord(records, *stored), nil
	})
	if err != nil {
		return err
	}

	if op.Kind == models.OperationCreate && stored != nil && stored.ID != tempID && models.IsOptimisticID(tempID) {
		return s.rewriteOptimisticID(ctx, op.HouseholdID, kind, tempID, stored.ID)
	}
	return nil
}

// rewriteOptimisticID переводит операции, ссылающиеся на временный id, на серверный
func (s *service) rewriteOptimisticID(ctx context.Context, householdID string, kind models.DataKind, tempID, serverID string) error {
	ops, err := s.store.GetHouseholdOperations(ctx, householdID)
	if err != nil {
		return err
	}

	for _, op := range ops {
		if op.Target.Kind != kind || op.Target.EntityID != tempID {
			continue
		}
		patch := models.PendingOperationPatch{EntityID: &serverID}
		if len(op.Payload) > 0 {
			payload, err := models.ReplaceDataID(op.Payload, serverID)
			if err != nil {
				return fmt.Errorf("failed to rewrite payload of operation %s: %w", op.ID, err)
			}
			patch.Payload = payload
		}
		if err := s.store.UpdatePendingOperation(ctx, op.ID, patch); err != nil {
			return fmt.Errorf("failed to rewrite operation %s: %w", op.ID, err)
		}
	}

	s.logger.Debug("Optimistic id reconciled", "household_id", householdID, "temp_id", tempID, "server_id", serverID)
	return nil
}

// Requeue возвращает parked операцию в очередь
func (s *service) Requeue(ctx context.Context, operationID string) error {
	retries := 0
	status := models.OperationQueued
	empty := ""
	err := s.store.UpdatePendingOperation(ctx, operationID, models.PendingOperationPatch{
		RetryCount: &retries,
		Status:     &status,
		LastError:  &empty,
	})
	if err != nil {
		return fmt.Errorf("failed to requeue operation: %w", err)
	}
	return nil
}

// Discard удаляет операцию из очереди
func (s *service) Discard(ctx context.Context, operationID string) error {
	if err := s.store.RemovePendingOperation(ctx, operationID); err != nil {
		return fmt.Errorf("failed to discard operation: %w", err)
	}
	return nil
}
