package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/realtime"
	"github.com/iudanet/homesync/internal/server/auth"
	"github.com/iudanet/homesync/pkg/api"
)

// HouseholdLister возвращает членства пользователя
type HouseholdLister interface {
	ListUserHouseholds(ctx context.Context, userID string) ([]*models.Membership, error)
}

// StatsSource источник статистики realtime hub
type StatsSource interface {
	Stats() realtime.Stats
}

// HouseholdHandler отдает household пользователя и статистику realtime
type HouseholdHandler struct {
	logger     *slog.Logger
	households HouseholdLister
	stats      StatsSource
}

// NewHouseholdHandler создает handler
func NewHouseholdHandler(logger *slog.Logger, households HouseholdLister, stats StatsSource) *HouseholdHandler {
	return &HouseholdHandler{logger: logger, households: households, stats: stats}
}

// ListHouseholds обрабатывает GET /api/v1/households
func (h *HouseholdHandler) ListHouseholds(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	memberships, err := h.households.ListUserHouseholds(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to list households", "user_id", user.ID, slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.HouseholdsResponse{Households: make([]api.Household, 0, len(memberships))}
	for _, m := range memberships {
		resp.Households = append(resp.Households, api.Household{ID: m.HouseholdID, Role: m.Role})
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// RealtimeStats обрабатывает GET /api/v1/realtime/stats
func (h *HouseholdHandler) RealtimeStats(w http.ResponseWriter, r *http.Request) {
	st := h.stats.Stats()
	sendJSON(h.logger, w, api.StatsResponse{Households: st.Households, Connections: st.Connections}, http.StatusOK)
}
