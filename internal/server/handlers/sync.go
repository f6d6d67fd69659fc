package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/auth"
	"github.com/iudanet/homesync/internal/server/storage"
	"github.com/iudanet/homesync/internal/validation"
	"github.com/iudanet/homesync/pkg/api"
)

// MembershipStore возвращает членство пользователя в household
type MembershipStore interface {
	GetMembership(ctx context.Context, userID, householdID string) (*models.Membership, error)
}

// Broadcaster рассылает доменные события подписчикам household
type Broadcaster interface {
	Broadcast(ctx context.Context, householdID string, event api.Event) (int, error)
}

// SyncHandler handles snapshot and operation replay requests
type SyncHandler struct {
	logger      *slog.Logger
	entities    storage.EntityStorage
	members     MembershipStore
	broadcaster Broadcaster
	now         func() time.Time
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, entities storage.EntityStorage, members MembershipStore, broadcaster Broadcaster) *SyncHandler {
	return &SyncHandler{
		logger:      logger,
		entities:    entities,
		members:     members,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// authorize проверяет пользователя из контекста и его членство в household из пути.
// При отказе ответ уже отправлен
func (h *SyncHandler) authorize(w http.ResponseWriter, r *http.Request) (*models.User, string, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.logger.Error("User not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return nil, "", false
	}

	householdID := r.PathValue("householdID")
	if err := validation.ValidateHouseholdID(householdID); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	if _, err := h.members.GetMembership(r.Context(), user.ID, householdID); err != nil {
		if errors.Is(err, storage.ErrMembershipNotFound) {
			h.logger.Warn("Household access denied", "user_id", user.ID, "household_id", householdID)
			sendError(h.logger, w, "not a member of household", http.StatusForbidden)
			return nil, "", false
		}
		h.logger.Error("Failed to check membership", "user_id", user.ID, "household_id", householdID, slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, "", false
	}

	return user, householdID, true
}

// ListEntities обрабатывает GET /api/v1/households/{householdID}/entities?kind=<kind>
// Возвращает серверный снимок одного вида данных
func (h *SyncHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	user, householdID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	kind, err := models.ParseDataKind(r.URL.Query().Get("kind"))
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.entities.ListEntities(r.Context(), householdID, kind)
	if err != nil {
		h.logger.Error("Failed to list entities", "household_id", householdID, "kind", kind, slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.EntitiesResponse{
		HouseholdID: householdID,
		Kind:        string(kind),
		Entities:    make([]api.Entity, 0, len(records)),
		ServerTime:  h.now().UnixMilli(),
	}
	for i := range records {
		resp.Entities = append(resp.Entities, api.EntityFromRecord(&records[i]))
	}

	h.logger.Info("Entities listed", "user_id", user.ID, "household_id", householdID, "kind", kind, "count", len(records))
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// ApplyOperation обрабатывает POST /api/v1/households/{householdID}/operations
// Применяет одну pending операцию клиента и рассылает событие подписчикам
func (h *SyncHandler) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	user, householdID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req api.OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode operation request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := models.ParseDataKind(req.EntityKind)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	opKind := models.OperationKind(req.Kind)
	if err := validation.ValidateOperation(opKind, req.EntityID, req.Payload); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.entities.ApplyOperation(r.Context(), householdID, &storage.Operation{
		ID:       req.OperationID,
		Kind:     opKind,
		DataKind: kind,
		EntityID: req.EntityID,
		Payload:  req.Payload,
	})
	if err != nil {
		h.sendApplyError(w, err, householdID, &req)
		return
	}

	resp := api.OperationResponse{Entity: api.EntityFromRecord(res.Record)}
	if opKind == models.OperationCreate && req.EntityID != "" && req.EntityID != res.Record.ID {
		resp.TempID = req.EntityID
	}

	h.logger.Info("Operation applied",
		"user_id", user.ID,
		"household_id", householdID,
		"operation_id", req.OperationID,
		"kind", opKind,
		"entity_kind", kind,
		"entity_id", res.Record.ID,
		"duplicate", res.Duplicate,
	)

	if !res.Duplicate {
		h.announce(r.Context(), householdID, opKind, res)
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

func (h *SyncHandler) sendApplyError(w http.ResponseWriter, err error, householdID string, req *api.OperationRequest) {
	switch {
	case errors.Is(err, storage.ErrEntityNotFound), errors.Is(err, storage.ErrHouseholdNotFound):
		sendError(h.logger, w, err.Error(), http.StatusNotFound)
	case errors.Is(err, storage.ErrEntityExists):
		sendError(h.logger, w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("Failed to apply operation",
			"household_id", householdID,
			"operation_id", req.OperationID,
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}

// announce рассылает событие о принятой мутации. Ошибки рассылки не влияют на ответ
func (h *SyncHandler) announce(ctx context.Context, householdID string, op models.OperationKind, res *storage.ApplyResult) {
	event, err := api.EventForRecord(op, res.Record, res.Previous)
	if err != nil {
		h.logger.Warn("Failed to build event", "household_id", householdID, "entity_id", res.Record.ID, slog.Any("error", err))
		return
	}
	h.broadcast(ctx, householdID, event)
}

func (h *SyncHandler) broadcast(ctx context.Context, householdID string, event api.Event) {
	n, err := h.broadcaster.Broadcast(ctx, householdID, event)
	if err != nil {
		h.logger.Warn("Failed to broadcast event", "household_id", householdID, "event", event.Type(), slog.Any("error", err))
		return
	}
	h.logger.Debug("Event broadcast", "household_id", householdID, "event", event.Type(), "recipients", n)
}

// BulkShopping обрабатывает POST /api/v1/households/{householdID}/shopping-list/bulk
func (h *SyncHandler) BulkShopping(w http.ResponseWriter, r *http.Request) {
	user, householdID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req api.BulkShoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Operation {
	case api.BulkComplete, api.BulkUncomplete, api.BulkDelete:
	default:
		sendError(h.logger, w, "unknown bulk operation", http.StatusBadRequest)
		return
	}
	if len(req.ItemIDs) == 0 {
		sendError(h.logger, w, "item_ids is required", http.StatusBadRequest)
		return
	}
	for _, id := range req.ItemIDs {
		if err := validation.ValidateEntityID(id); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	changed, err := h.entities.BulkShopping(r.Context(), householdID, req.Operation, req.ItemIDs)
	if err != nil {
		h.logger.Error("Failed to apply bulk operation", "household_id", householdID, slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Bulk shopping operation applied",
		"user_id", user.ID,
		"household_id", householdID,
		"operation", req.Operation,
		"requested", len(req.ItemIDs),
		"changed", len(changed))

	if len(changed) > 0 {
		h.broadcast(r.Context(), householdID, &api.ShoppingBulkOperation{
			HouseholdID: householdID,
			Operation:   req.Operation,
			ItemIDs:     changed,
		})
	}

	sendJSON(h.logger, w, api.BulkShoppingResponse{Operation: req.Operation, ItemIDs: changed}, http.StatusOK)
}
