package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/data"
	"github.com/iudanet/homesync/internal/client/realtime"
	"github.com/iudanet/homesync/internal/client/sync"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/pkg/api"
)

func TestCli_Add_WithFields(t *testing.T) {
	ctx := context.Background()
	mockIO, out := newTestIO()

	var got json.RawMessage
	mockData := &data.ServiceMock{
		CreateFunc: func(ctx context.Context, householdID string, kind models.DataKind, payload json.RawMessage) (*models.Record, error) {
			assert.Equal(t, "h1", householdID)
			assert.Equal(t, models.KindShoppingList, kind)
			got = payload
			return record(kind, "tmp-1", string(payload)), nil
		},
	}
	mockSync := &sync.ServiceMock{}
	c := New(Deps{IO: mockIO, DataService: mockData, SyncService: mockSync, Household: "h1"})

	err := c.Run(ctx, "add", []string{"shopping", "name=milk", "quantity=2", "unit=l"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"milk","quantity":2,"unit":"l"}`, string(got))
	assert.Contains(t, out.String(), "Added shopping_list: [ ] milk (2 l)")
	assert.Contains(t, out.String(), "Saved locally")
	assert.Empty(t, mockSync.SyncCalls())
}

func TestCli_Add_Interactive(t *testing.T) {
	ctx := context.Background()
	mockIO, _ := newTestIO("Rice", "2.5", "kg", "pantry", "")

	var got json.RawMessage
	mockData := &data.ServiceMock{
		CreateFunc: func(ctx context.Context, householdID string, kind models.DataKind, payload json.RawMessage) (*models.Record, error) {
			got = payload
			return record(kind, "tmp-1", string(payload)), nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

	require.NoError(t, c.Run(ctx, "add", []string{"inventory"}))
	assert.JSONEq(t, `{"name":"Rice","quantity":2.5,"unit":"kg","location":"pantry"}`, string(got))
}

func TestCli_Add_InteractiveValidation(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		answers []string
		wantErr string
	}{
		{name: "empty name", kind: "inventory", answers: []string{""}, wantErr: "name cannot be empty"},
		{name: "bad quantity", kind: "shopping", answers: []string{"milk", "two"}, wantErr: "quantity must be a number"},
		{name: "bad servings", kind: "recipe", answers: []string{"Soup", "many"}, wantErr: "servings must be an integer"},
		{name: "input closed", kind: "meal", answers: nil, wantErr: "failed to read date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIO, _ := newTestIO(tt.answers...)
			mockData := &data.ServiceMock{}
			c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

			err := c.Run(context.Background(), "add", []string{tt.kind})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, mockData.CreateCalls())
		})
	}
}

func TestCli_Add_RecipeIngredients(t *testing.T) {
	mockIO, _ := newTestIO("Soup", "4", "water, salt ,, carrot", "boil", "")

	var got json.RawMessage
	mockData := &data.ServiceMock{
		CreateFunc: func(ctx context.Context, householdID string, kind models.DataKind, payload json.RawMessage) (*models.Record, error) {
			got = payload
			return record(kind, "tmp-1", string(payload)), nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "add", []string{"recipe"}))
	assert.JSONEq(t, `{"name":"Soup","servings":4,"ingredients":["water","salt","carrot"],"instructions":"boil"}`, string(got))
}

func TestCli_Add_SyncFailureKeepsChange(t *testing.T) {
	mockIO, out := newTestIO()
	mockData := &data.ServiceMock{
		CreateFunc: func(ctx context.Context, householdID string, kind models.DataKind, payload json.RawMessage) (*models.Record, error) {
			return record(kind, "tmp-1", string(payload)), nil
		},
	}
	mockSync := &sync.ServiceMock{
		SyncFunc: func(ctx context.Context, householdID string, kind models.DataKind) (*sync.CycleResult, error) {
			return nil, apperr.Transient(errors.New("connection refused"), "fetch inventory")
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, SyncService: mockSync, Household: "h1"})

	err := c.Run(context.Background(), "add", []string{"inventory", "name=Rice", "--sync"})
	require.NoError(t, err)
	require.Len(t, mockSync.SyncCalls(), 1)
	assert.Equal(t, models.KindInventory, mockSync.SyncCalls()[0].Kind)
	assert.Contains(t, out.String(), "Sync failed, the change stays queued")
}

func TestCli_Add_SyncReportsCycle(t *testing.T) {
	mockIO, out := newTestIO()
	mockData := &data.ServiceMock{
		CreateFunc: func(ctx context.Context, householdID string, kind models.DataKind, payload json.RawMessage) (*models.Record, error) {
			return record(kind, "tmp-1", string(payload)), nil
		},
	}
	mockSync := &sync.ServiceMock{
		SyncFunc: func(ctx context.Context, householdID string, kind models.DataKind) (*sync.CycleResult, error) {
			return &sync.CycleResult{
				Result: sync.Result{Synced: []models.Record{*record(kind, "srv-1", `{"name":"Rice"}`)}},
				Replay: sync.ReplayReport{Applied: 1},
				Kind:   kind,
			}, nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, SyncService: mockSync, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "add", []string{"inventory", "name=Rice", "--sync"}))
	assert.Contains(t, out.String(), "inventory: 1 entries")
	assert.Contains(t, out.String(), "pending: 1 sent, 0 parked, 0 left")
}

func TestCli_Update(t *testing.T) {
	mockIO, out := newTestIO()
	mockData := &data.ServiceMock{
		UpdateFunc: func(ctx context.Context, householdID string, kind models.DataKind, id string, patch json.RawMessage) (*models.Record, error) {
			assert.Equal(t, "s1", id)
			assert.JSONEq(t, `{"completed":true}`, string(patch))
			return record(kind, id, `{"name":"milk","completed":true}`), nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "update", []string{"shopping", "s1", "completed=true"}))
	assert.Contains(t, out.String(), "Updated shopping_list: [x] milk")

	err := c.Run(context.Background(), "update", []string{"shopping", "s1"})
	assert.Error(t, err)
}

func TestCli_Delete(t *testing.T) {
	mockIO, out := newTestIO()
	mockData := &data.ServiceMock{
		DeleteFunc: func(ctx context.Context, householdID string, kind models.DataKind, id string) error {
			if id == "missing" {
				return data.ErrNotFound
			}
			return nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "delete", []string{"meal", "m1"}))
	assert.Contains(t, out.String(), "Deleted meal_plan m1")

	err := c.Run(context.Background(), "delete", []string{"meal", "missing"})
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestCli_List(t *testing.T) {
	optimistic := models.GenerateOptimisticID()
	mockIO, out := newTestIO()
	mockData := &data.ServiceMock{
		ListFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
			return []models.Record{
				*record(kind, "i1", `{"name":"Rice","quantity":1,"unit":"kg"}`),
				*record(kind, optimistic, `{"name":"Salt","quantity":1}`),
			}, nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "list", []string{"inventory"}))
	assert.Contains(t, out.String(), "1. Rice: 1 kg")
	assert.Contains(t, out.String(), "2. Salt: 1")
	assert.Contains(t, out.String(), optimistic+" (not synced yet)")
	assert.Contains(t, out.String(), "Total: 2")
}

func TestCli_List_Empty(t *testing.T) {
	mockIO, out := newTestIO()
	mockData := &data.ServiceMock{
		ListFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
			return nil, nil
		},
	}
	c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "list", []string{"recipe"}))
	assert.Contains(t, out.String(), "No entries found.")
	assert.Contains(t, out.String(), "homesync add recipe")
}

func TestCli_Get(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		data  string
		wants []string
	}{
		{
			name:  "inventory",
			kind:  "inventory",
			data:  `{"name":"Rice","quantity":2,"unit":"kg","location":"pantry"}`,
			wants: []string{"Name:     Rice", "Quantity: 2 kg", "Location: pantry"},
		},
		{
			name:  "shopping",
			kind:  "shopping",
			data:  `{"name":"milk","completed":true}`,
			wants: []string{"Name:      milk", "Completed: yes"},
		},
		{
			name:  "meal",
			kind:  "meal",
			data:  `{"date":"2024-05-01","meal":"dinner","servings":3}`,
			wants: []string{"Date:     2024-05-01", "Servings: 3", "Cooked:   no"},
		},
		{
			name:  "recipe",
			kind:  "recipe",
			data:  `{"name":"Soup","ingredients":["water","salt"],"instructions":"boil"}`,
			wants: []string{"Name:     Soup", "  - water", "  - salt", "boil"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIO, out := newTestIO()
			mockData := &data.ServiceMock{
				GetFunc: func(ctx context.Context, householdID string, kind models.DataKind, id string) (*models.Record, error) {
					return record(kind, id, tt.data), nil
				},
			}
			c := New(Deps{IO: mockIO, DataService: mockData, Household: "h1"})

			require.NoError(t, c.Run(context.Background(), "get", []string{tt.kind, "x1"}))
			for _, want := range tt.wants {
				assert.Contains(t, out.String(), want)
			}
			assert.Contains(t, out.String(), "(v1)")
		})
	}
}

func TestCli_Sync_Household(t *testing.T) {
	mockIO, out := newTestIO()
	mockSync := &sync.ServiceMock{
		SyncHouseholdFunc: func(ctx context.Context, householdID string) ([]*sync.CycleResult, error) {
			return []*sync.CycleResult{
				{Kind: models.KindInventory, Result: sync.Result{Resolved: 2}},
				{
					Kind: models.KindShoppingList,
					Result: sync.Result{
						Conflicts: []models.SyncConflict{{ID: "s1"}},
						Failed:    []sync.Failure{{ID: "s2", Err: errors.New("bad payload")}},
					},
					Replay: sync.ReplayReport{Parked: 1, Held: 1, Remaining: 2},
				},
			}, nil
		},
	}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "sync", nil))
	s := out.String()
	assert.Contains(t, s, "inventory: 0 entries, 2 conflicts resolved")
	assert.Contains(t, s, "shopping_list: 0 entries, 1 conflicts open")
	assert.Contains(t, s, "pending: 0 sent, 1 parked, 2 left")
	assert.Contains(t, s, "1 held until conflicts are resolved")
	assert.Contains(t, s, "s2: bad payload")
	assert.Contains(t, s, "homesync conflicts shopping_list")
	assert.Contains(t, s, "Synchronization completed")
}

func TestCli_Sync_Kind(t *testing.T) {
	mockIO, _ := newTestIO()
	mockSync := &sync.ServiceMock{
		SyncFunc: func(ctx context.Context, householdID string, kind models.DataKind) (*sync.CycleResult, error) {
			return nil, apperr.Authentication(errors.New("token expired"), "fetch recipes")
		},
	}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	err := c.Run(context.Background(), "sync", []string{"recipe"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrAuthentication))
	require.Len(t, mockSync.SyncCalls(), 1)
	assert.Equal(t, models.KindRecipes, mockSync.SyncCalls()[0].Kind)
}

func TestCli_Conflicts(t *testing.T) {
	mockIO, out := newTestIO()
	mockSync := &sync.ServiceMock{
		OpenConflictsFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]*models.SyncConflict, error) {
			if kind != models.KindShoppingList {
				return nil, nil
			}
			return []*models.SyncConflict{{
				ID:         "s1",
				Kind:       kind,
				LocalData:  *record(kind, "s1", `{"name":"milk","quantity":1}`),
				ServerData: *record(kind, "s1", `{"name":"milk","quantity":3}`),
			}}, nil
		},
	}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "conflicts", nil))
	assert.Len(t, mockSync.OpenConflictsCalls(), len(models.AllKinds))
	assert.Contains(t, out.String(), "shopping_list s1")
	assert.Contains(t, out.String(), "[ ] milk (1)")
	assert.Contains(t, out.String(), "[ ] milk (3)")
}

func TestCli_Conflicts_None(t *testing.T) {
	mockIO, out := newTestIO()
	mockSync := &sync.ServiceMock{
		OpenConflictsFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]*models.SyncConflict, error) {
			return nil, nil
		},
	}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "conflicts", []string{"inventory"}))
	assert.Len(t, mockSync.OpenConflictsCalls(), 1)
	assert.Contains(t, out.String(), "No open conflicts.")
}

func TestCli_Resolve(t *testing.T) {
	mockIO, out := newTestIO()
	mockSync := &sync.ServiceMock{
		ResolveManualFunc: func(ctx context.Context, householdID string, kind models.DataKind, id string, choice models.Strategy) (*models.Record, error) {
			return record(kind, id, `{"name":"Rice","quantity":5}`), nil
		},
	}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "resolve", []string{"inventory", "i1", "client-wins"}))
	require.Len(t, mockSync.ResolveManualCalls(), 1)
	call := mockSync.ResolveManualCalls()[0]
	assert.Equal(t, models.StrategyClientWins, call.Choice)
	assert.Equal(t, "i1", call.Id)
	assert.Contains(t, out.String(), "Resolved inventory i1 with client-wins: Rice: 5")
}

func TestCli_Resolve_InvalidChoice(t *testing.T) {
	mockIO, _ := newTestIO()
	mockSync := &sync.ServiceMock{}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	assert.Error(t, c.Run(context.Background(), "resolve", []string{"inventory", "i1", "coin-flip"}))
	assert.Error(t, c.Run(context.Background(), "resolve", []string{"inventory", "i1"}))
	assert.Empty(t, mockSync.ResolveManualCalls())
}

func TestCli_Resolve_ManualKeepsConflictOpen(t *testing.T) {
	mockIO, out := newTestIO()
	mockSync := &sync.ServiceMock{
		ResolveManualFunc: func(ctx context.Context, householdID string, kind models.DataKind, id string, choice models.Strategy) (*models.Record, error) {
			return nil, apperr.Unresolved(errors.New("manual is not a decision"), "choose server-wins, client-wins or merge")
		},
	}
	c := New(Deps{IO: mockIO, SyncService: mockSync, Household: "h1"})

	err := c.Run(context.Background(), "resolve", []string{"inventory", "i1", "manual"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrConflictUnresolved))
	assert.Contains(t, err.Error(), "stays open")
	require.Len(t, mockSync.ResolveManualCalls(), 1)
	assert.NotContains(t, out.String(), "Resolved")
}

func TestCli_Shop(t *testing.T) {
	mockIO, out := newTestIO()
	server := &ServerAPIMock{
		BulkShoppingFunc: func(ctx context.Context, householdID string, req api.BulkShoppingRequest) (*api.BulkShoppingResponse, error) {
			return &api.BulkShoppingResponse{Operation: req.Operation, ItemIDs: req.ItemIDs[:1]}, nil
		},
	}
	mockSync := &sync.ServiceMock{
		SyncFunc: func(ctx context.Context, householdID string, kind models.DataKind) (*sync.CycleResult, error) {
			return &sync.CycleResult{Kind: kind}, nil
		},
	}
	c := New(Deps{IO: mockIO, Server: server, SyncService: mockSync, Household: "h1"})

	require.NoError(t, c.Run(context.Background(), "shop", []string{"complete", "s1", "s2"}))
	require.Len(t, server.BulkShoppingCalls(), 1)
	assert.Equal(t, api.BulkShoppingRequest{Operation: api.BulkComplete, ItemIDs: []string{"s1", "s2"}}, server.BulkShoppingCalls()[0].Req)
	assert.Contains(t, out.String(), "complete: 1 of 2 items changed")
	require.Len(t, mockSync.SyncCalls(), 1)
	assert.Equal(t, models.KindShoppingList, mockSync.SyncCalls()[0].Kind)
}

func TestCli_Shop_Rejects(t *testing.T) {
	mockIO, _ := newTestIO()
	server := &ServerAPIMock{}
	c := New(Deps{IO: mockIO, Server: server, Household: "h1"})

	assert.Error(t, c.Run(context.Background(), "shop", []string{"buy", "s1"}))
	assert.Error(t, c.Run(context.Background(), "shop", []string{"complete"}))
	assert.Error(t, c.Run(context.Background(), "shop", []string{"delete", models.GenerateOptimisticID()}))
	assert.Empty(t, server.BulkShoppingCalls())
}

func TestCli_Watch(t *testing.T) {
	mockIO, out := newTestIO()
	watch := func(ctx context.Context, hook realtime.EventHook) error {
		hook("h1", &api.InventoryUpdated{HouseholdID: "h1", Item: models.InventoryItem{ID: "i1"}})
		hook("h1", &api.ShoppingItemDeleted{HouseholdID: "h1", ItemID: "s1"})
		return context.Canceled
	}
	c := New(Deps{IO: mockIO, Household: "h1", Watch: watch})

	require.NoError(t, c.Run(context.Background(), "watch", nil))
	assert.Contains(t, out.String(), "[h1] inventory-updated")
	assert.Contains(t, out.String(), "[h1] shopping-item-deleted")
	assert.Contains(t, out.String(), "Stopped.")
}

func TestCli_Watch_Error(t *testing.T) {
	mockIO, _ := newTestIO()
	c := New(Deps{IO: mockIO, Household: "h1", Watch: func(ctx context.Context, hook realtime.EventHook) error {
		return apperr.Authentication(errors.New("rejected"), "dial")
	}})

	err := c.Run(context.Background(), "watch", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrAuthentication))
}
