package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/homesync/internal/realtime"
	"github.com/iudanet/homesync/pkg/api"
)

type staticStats realtime.Stats

func (s staticStats) Stats() realtime.Stats { return realtime.Stats(s) }

func TestHouseholdHandler_ListHouseholds(t *testing.T) {
	f := setupSyncHandler(t)
	handler := NewHouseholdHandler(setupTestLogger(), f.store, staticStats{})

	w := httptest.NewRecorder()
	handler.ListHouseholds(w, newRequest(t, http.MethodGet, "/api/v1/households", "alice", "", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HouseholdsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, []api.Household{{ID: "h1", Role: "owner"}}, resp.Households)

	w = httptest.NewRecorder()
	handler.ListHouseholds(w, newRequest(t, http.MethodGet, "/api/v1/households", "", "", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHouseholdHandler_RealtimeStats(t *testing.T) {
	handler := NewHouseholdHandler(setupTestLogger(), nil, staticStats{
		Connections: 3,
		Households:  map[string]int{"h1": 2, "h2": 1},
	})

	w := httptest.NewRecorder()
	handler.RealtimeStats(w, httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.StatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Connections)
	assert.Equal(t, map[string]int{"h1": 2, "h2": 1}, resp.Households)
}
