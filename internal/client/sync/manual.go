package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/conflict"
	"github.com/iudanet/homesync/internal/models"
)

// OpenConflicts возвращает конфликты, ожидающие решения пользователя
func (s *service) OpenConflicts(ctx context.Context, householdID string, kind models.DataKind) ([]*models.SyncConflict, error) {
	conflicts, err := s.store.GetConflicts(ctx, householdID, kind)
	if err != nil {
		return nil, apperr.Persistence(err, "load open conflicts")
	}
	return conflicts, nil
}

// ResolveManual closes an open conflict with the user's choice.
//
// The chosen version replaces the entity in the local snapshot. Queued updates of
// the entity are rewritten to carry the chosen version, or dropped when it equals
// the server version, so the decision reaches the server on the next replay. The watermark advances on the next cycle once no conflicts
// of the kind remain open.
func (s *service) ResolveManual(ctx context.Context, householdID string, kind models.DataKind, id string, choice models.Strategy) (*models.Record, error) {
	if choice == models.StrategyManual {
		return nil, apperr.Unresolved(
			fmt.Errorf("manual is not a decision for %s/%s", kind, id),
			"choose server-wins, client-wins or merge")
	}

	open, err := s.store.GetConflicts(ctx, householdID, kind)
	if err != nil {
		return nil, apperr.Persistence(err, "load open conflicts")
	}

	var c *models.SyncConflict
	for _, oc := range open {
		if oc.ID == id {
			c = oc
			break
		}
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s/%s/%s", storage.ErrConflictNotFound, householdID, kind, id)
	}

	resolved, err := conflict.Resolve(c, choice, conflict.MergerFor(kind))
	if err != nil {
		return nil, err
	}
	// решение привязано к серверной версии, против которой оно принято:
	// следующий цикл не должен снова увидеть здесь конфликт
	resolved.UpdatedAt = c.ServerData.UpdatedAt

	err = s.snapshots.Update(ctx, householdID, kind, func(records []models.Record) ([]models.Record, error) {
		return storage.UpsertRecord(records, *resolved.Clone()), nil
	})
	if err != nil {
		return nil, apperr.Persistence(err, "apply manual decision")
	}

	if err := s.settlePending(ctx, householdID, kind, resolved, c.ServerData.Data); err != nil {
		return nil, apperr.Persistence(err, "queue manual decision")
	}

	if err := s.store.DeleteConflict(ctx, householdID, kind, id); err != nil {
		return nil, apperr.Persistence(err, "close conflict")
	}

	s.logger.Info("Conflict resolved manually",
		"household_id", householdID, "kind", kind, "id", id, "choice", choice)
	return resolved, nil
}
