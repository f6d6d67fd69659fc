package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/homesync/internal/conflict"
	"github.com/iudanet/homesync/internal/models"
)

// Reconcile builds the new local snapshot of (householdID, kind) from the local and
// server snapshots. It reads the watermark, the pending queue and the open conflicts
// but writes nothing.
//
// Snapshot rules:
//   - ids only on the server are taken from the server, unless a queued delete targets them
//   - ids on both sides without a conflict keep the newer version
//   - auto-resolved conflicts take the resolved version
//   - open (manual) and failed conflicts keep the local version
//   - ids only in the local snapshot survive only while a pending operation targets them
func (s *service) Reconcile(ctx context.Context, local, server []models.Record, householdID string, kind models.DataKind, strategy models.Strategy) (*Result, error) {
	return s.reconcile(ctx, local, server, householdID, kind, strategy, false)
}

// reconcile публикует переходы состояний только внутри цикла Sync.
func (s *service) reconcile(ctx context.Context, local, server []models.Record, householdID string, kind models.DataKind, strategy models.Strategy, observed bool) (*Result, error) {
	if observed {
		s.setState(householdID, kind, StateDetecting)
	}

	conflicts, err := s.detector.Detect(ctx, local, server, householdID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to detect conflicts: %w", err)
	}

	open, err := s.store.GetConflicts(ctx, householdID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load open conflicts: %w", err)
	}
	pending, err := s.store.GetHouseholdOperations(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending operations: %w", err)
	}

	targeted := make(map[string]models.OperationKind)
	for _, op := range pending {
		if op.Target.Kind == kind {
			// последняя операция определяет намерение пользователя
			targeted[op.Target.EntityID] = op.Kind
		}
	}

	localByID := make(map[string]*models.Record, len(local))
	for i := range local {
		localByID[local[i].ID] = &local[i]
	}
	serverByID := make(map[string]*models.Record, len(server))
	for i := range server {
		serverByID[server[i].ID] = &server[i]
	}

	detected := make(map[string]*models.SyncConflict, len(conflicts))
	for i := range conflicts {
		detected[conflicts[i].ID] = &conflicts[i]
	}

	// открытые конфликты остаются открытыми до явного решения, даже если
	// в этом цикле детектор их больше не видит
	stillOpen := make(map[string]bool, len(open))
	for _, c := range open {
		stillOpen[c.ID] = true
		if _, ok := detected[c.ID]; ok {
			continue
		}
		refreshed := *c
		if srv, ok := serverByID[c.ID]; ok {
			refreshed.ServerData = *srv.Clone()
			refreshed.ServerTimestamp = srv.UpdatedAtMillis()
		}
		if l, ok := localByID[c.ID]; ok {
			refreshed.LocalData = *l.Clone()
			refreshed.LocalTimestamp = l.UpdatedAtMillis()
		}
		detected[c.ID] = &refreshed
	}

	result := &Result{}
	snapshot := make([]models.Record, 0, len(server)+len(local))

	if observed && len(detected) > 0 {
		s.setState(householdID, kind, StateResolving)
	}

	for i := range server {
		srv := &server[i]
		if srv.Deleted {
			continue
		}
		if targeted[srv.ID] == models.OperationDelete {
			continue
		}

		c, isConflict := detected[srv.ID]
		if !isConflict {
			if l, ok := localByID[srv.ID]; ok && keepLocal(l, srv, targeted[srv.ID]) {
				snapshot = append(snapshot, *l.Clone())
			} else {
				snapshot = append(snapshot, *srv.Clone())
			}
			continue
		}

		if strategy == models.StrategyManual || stillOpen[srv.ID] {
			result.Conflicts = append(result.Conflicts, *c)
			snapshot = append(snapshot, *c.LocalData.Clone())
			continue
		}

		resolved, err := conflict.Resolve(c, strategy, conflict.MergerFor(kind))
		if err != nil {
			s.logger.Warn("Failed to resolve conflict", "household_id", householdID, "kind", kind, "id", c.ID, "error", err)
			result.Failed = append(result.Failed, Failure{ID: c.ID, Err: err})
			snapshot = append(snapshot, *c.LocalData.Clone())
			continue
		}

		result.Resolved++
		snapshot = append(snapshot, *resolved)
		result.settled = append(result.settled, settlement{resolved: *resolved, serverData: srv.Data})
	}

	// открытые конфликты по сущностям, исчезнувшим с сервера
	for _, c := range open {
		if _, ok := serverByID[c.ID]; ok {
			continue
		}
		result.Conflicts = append(result.Conflicts, *detected[c.ID])
		if l, ok := localByID[c.ID]; ok {
			snapshot = append(snapshot, *l.Clone())
		}
	}

	for i := range local {
		l := &local[i]
		if _, ok := serverByID[l.ID]; ok || stillOpen[l.ID] {
			continue
		}
		if kindOp, ok := targeted[l.ID]; ok && kindOp != models.OperationDelete {
			snapshot = append(snapshot, *l.Clone())
		}
	}

	result.Synced = snapshot
	return result, nil
}

// keepLocal: локальная версия новее серверной или содержит правку, ждущую replay
func keepLocal(local, server *models.Record, pendingOp models.OperationKind) bool {
	return local.IsNewerThan(server) || pendingOp == models.OperationUpdate
}
