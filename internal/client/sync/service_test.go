package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/client/storage/boltdb"
	"github.com/iudanet/homesync/internal/models"
)

const (
	t0  int64 = 1_700_000_000_000
	day int64 = 86_400_000
	hh        = "h1"
)

var testNow = time.UnixMilli(t0 + 3*day)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	svc       *service
	store     *boltdb.Storage
	snapshots *storage.Snapshots
	api       *ServerAPIMock
}

func newTestEnv(t *testing.T, api *ServerAPIMock, opts ...Option) *testEnv {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	snapshots := storage.NewSnapshots(store)
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	svc := NewService(api, store, snapshots, setupTestLogger(), opts...).(*service)

	return &testEnv{svc: svc, store: store, snapshots: snapshots, api: api}
}

func inventory(t *testing.T, id string, ms int64, quantity float64) models.Record {
	t.Helper()
	r := models.Record{ID: id, HouseholdID: hh, Kind: models.KindInventory, UpdatedAt: time.UnixMilli(ms).UTC()}
	require.NoError(t, models.EncodeData(&r, &models.InventoryItem{ID: id, Name: id, Quantity: quantity, UpdatedAt: r.UpdatedAt}))
	return r
}

func quantityOf(t *testing.T, records []models.Record, id string) float64 {
	t.Helper()
	r := storage.FindRecord(records, id)
	require.NotNil(t, r, "record %s not in snapshot", id)
	item, err := models.DecodeData[models.InventoryItem](r)
	require.NoError(t, err)
	return item.Quantity
}

func (e *testEnv) seedSnapshot(t *testing.T, records ...models.Record) {
	t.Helper()
	require.NoError(t, e.snapshots.Update(context.Background(), hh, models.KindInventory, func([]models.Record) ([]models.Record, error) {
		return records, nil
	}))
}

func (e *testEnv) snapshot(t *testing.T) ([]models.Record, int64) {
	t.Helper()
	records, version, err := e.snapshots.Load(context.Background(), hh, models.KindInventory)
	require.NoError(t, err)
	return records, version
}

func (e *testEnv) watermark(t *testing.T) int64 {
	t.Helper()
	ts, err := e.store.GetLastSyncTimestamp(context.Background(), hh, models.KindInventory)
	require.NoError(t, err)
	return ts
}

func (e *testEnv) queue(t *testing.T) []*models.PendingOperation {
	t.Helper()
	ops, err := e.store.GetHouseholdOperations(context.Background(), hh)
	require.NoError(t, err)
	return ops
}

func serverReturns(records ...models.Record) func(context.Context, string, models.DataKind) ([]models.Record, error) {
	return func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
		out := make([]models.Record, len(records))
		copy(out, records)
		return out, nil
	}
}

func TestNewService(t *testing.T) {
	api := &ServerAPIMock{}
	env := newTestEnv(t, api)

	assert.Equal(t, api, env.svc.api)
	assert.Equal(t, models.StrategyMerge, env.svc.strategy)
	assert.Equal(t, DefaultMaxRetries, env.svc.maxRetries)
	assert.NotNil(t, env.svc.detector)
	assert.Equal(t, StateIdle, env.svc.State(hh, models.KindInventory))
}

func TestSync_FetchFailureLeavesCacheAndWatermark(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
			return nil, errors.New("connection refused")
		},
	})
	ctx := context.Background()

	env.seedSnapshot(t, inventory(t, "a", t0+day, 1))
	require.NoError(t, env.store.SaveLastSyncTimestamp(ctx, hh, models.KindInventory, t0))
	_, versionBefore := env.snapshot(t)

	_, err := env.svc.Sync(ctx, hh, models.KindInventory)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrTransientNetwork))

	records, versionAfter := env.snapshot(t)
	assert.Equal(t, versionBefore, versionAfter)
	assert.Len(t, records, 1)
	assert.Equal(t, t0, env.watermark(t))
	assert.Empty(t, env.api.ApplyOperationCalls())
	assert.Equal(t, StateIdle, env.svc.State(hh, models.KindInventory))
}

func TestSync_AuthenticationErrorKeepsCategory(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
			return nil, apperr.Authentication(errors.New("401"), "session rejected")
		},
	})

	_, err := env.svc.Sync(context.Background(), hh, models.KindInventory)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrAuthentication))
	assert.False(t, apperr.Is(err, apperr.ErrTransientNetwork))
}

func TestSync_AppliesServerSnapshot(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(inventory(t, "a", t0, 1), inventory(t, "b", t0, 2)),
	})

	res, err := env.svc.Sync(context.Background(), hh, models.KindInventory)
	require.NoError(t, err)

	assert.Empty(t, res.Conflicts)
	assert.Len(t, res.Synced, 2)
	assert.Equal(t, testNow.UnixMilli(), res.Watermark)

	records, version := env.snapshot(t)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, testNow.UnixMilli(), env.watermark(t))
}

func TestSync_MergeScenario(t *testing.T) {
	// watermark T0, local X at T0+1d, server X at T0+2d: one conflict, server fields win
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(inventory(t, "X", t0+2*day, 9)),
	})
	ctx := context.Background()
	env.seedSnapshot(t, inventory(t, "X", t0+day, 2))
	require.NoError(t, env.store.SaveLastSyncTimestamp(ctx, hh, models.KindInventory, t0))

	res, err := env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Resolved)
	assert.Empty(t, res.Conflicts)
	records, _ := env.snapshot(t)
	assert.Equal(t, 9.0, quantityOf(t, records, "X"))
	assert.Equal(t, testNow.UnixMilli(), env.watermark(t))
	assert.Empty(t, env.queue(t), "merged version equals server, nothing to push")
}

func TestSync_ClientWinsQueuesPushBack(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(inventory(t, "X", t0+2*day, 9)),
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			return nil, apperr.Transient(errors.New("offline"), "apply")
		},
	}, WithKindStrategy(models.KindInventory, models.StrategyClientWins))
	ctx := context.Background()
	env.seedSnapshot(t, inventory(t, "X", t0+day, 2))
	require.NoError(t, env.store.SaveLastSyncTimestamp(ctx, hh, models.KindInventory, t0))

	res, err := env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Resolved)

	records, _ := env.snapshot(t)
	assert.Equal(t, 2.0, quantityOf(t, records, "X"))

	ops := env.queue(t)
	require.Len(t, ops, 1)
	assert.Equal(t, models.OperationUpdate, ops[0].Kind)
	assert.Equal(t, "X", ops[0].Target.EntityID)
	assert.Equal(t, 1, ops[0].RetryCount)

	// повторный цикл не ставит вторую операцию для той же сущности
	_, err = env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)
	assert.Len(t, env.queue(t), 1)
}

func TestSync_ManualConflictStaysOpen(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(inventory(t, "X", t0+2*day, 9), inventory(t, "Y", t0+day, 5)),
	}, WithStrategy(models.StrategyManual))
	ctx := context.Background()
	env.seedSnapshot(t, inventory(t, "X", t0+day, 2))
	require.NoError(t, env.store.SaveLastSyncTimestamp(ctx, hh, models.KindInventory, t0))

	res, err := env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "X", res.Conflicts[0].ID)
	assert.Equal(t, int64(0), res.Watermark)
	assert.Equal(t, t0, env.watermark(t))

	records, _ := env.snapshot(t)
	assert.Equal(t, 2.0, quantityOf(t, records, "X"), "conflicting entity keeps local version")
	assert.Equal(t, 5.0, quantityOf(t, records, "Y"), "unaffected entities proceed")

	open, err := env.svc.OpenConflicts(ctx, hh, models.KindInventory)
	require.NoError(t, err)
	require.Len(t, open, 1)

	// решение пользователя закрывает конфликт, следующий цикл сдвигает watermark
	resolved, err := env.svc.ResolveManual(ctx, hh, models.KindInventory, "X", models.StrategyServerWins)
	require.NoError(t, err)
	assert.Equal(t, "X", resolved.ID)

	open, err = env.svc.OpenConflicts(ctx, hh, models.KindInventory)
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.Empty(t, env.queue(t))

	res, err = env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, testNow.UnixMilli(), env.watermark(t))
	records, _ = env.snapshot(t)
	assert.Equal(t, 9.0, quantityOf(t, records, "X"))
}

func TestResolveManual_ClientWins(t *testing.T) {
	var applied []*models.PendingOperation
	server := inventory(t, "X", t0+2*day, 9)

	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(server),
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			applied = append(applied, op)
			r := models.Record{ID: op.Target.EntityID, HouseholdID: hh, Kind: op.Target.Kind, Data: op.Payload, UpdatedAt: testNow, Version: 2}
			return &r, nil
		},
	}, WithStrategy(models.StrategyManual))
	ctx := context.Background()
	env.seedSnapshot(t, inventory(t, "X", t0+day, 2))
	require.NoError(t, env.store.SaveLastSyncTimestamp(ctx, hh, models.KindInventory, t0))

	_, err := env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)

	_, err = env.svc.ResolveManual(ctx, hh, models.KindInventory, "X", models.StrategyClientWins)
	require.NoError(t, err)
	require.Len(t, env.queue(t), 1)

	res, err := env.svc.Sync(ctx, hh, models.KindInventory)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts, "decided entity must not reopen")
	assert.Equal(t, 1, res.Replay.Applied)
	require.Len(t, applied, 1)
	assert.Equal(t, models.OperationUpdate, applied[0].Kind)

	records, _ := env.snapshot(t)
	assert.Equal(t, 2.0, quantityOf(t, records, "X"))
	assert.Empty(t, env.queue(t))
}

func TestResolveManual_Errors(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{})
	ctx := context.Background()

	_, err := env.svc.ResolveManual(ctx, hh, models.KindInventory, "missing", models.StrategyServerWins)
	assert.ErrorIs(t, err, storage.ErrConflictNotFound)

	_, err = env.svc.ResolveManual(ctx, hh, models.KindInventory, "missing", models.StrategyManual)
	assert.True(t, apperr.Is(err, apperr.ErrConflictUnresolved))
}

// staleEdit готовит сущность X: локально количество 5 (T0+1d) с правкой в очереди,
// на сервере 9 (T0+2d), watermark T0
func staleEdit(t *testing.T, env *testEnv, notes string) models.Record {
	t.Helper()
	local := inventory(t, "X", t0+day, 5)
	if notes != "" {
		item, err := models.DecodeData[models.InventoryItem](&local)
		require.NoError(t, err)
		item.Notes = notes
		require.NoError(t, models.EncodeData(&local, item))
	}
	env.seedSnapshot(t, local)
	require.NoError(t, env.store.SaveLastSyncTimestamp(context.Background(), hh, models.KindInventory, t0))
	addOp(t, env, hh, models.OperationUpdate, "X", string(local.Data))
	return local
}

func sentItems(t *testing.T, calls []models.PendingOperation) []models.InventoryItem {
	t.Helper()
	items := make([]models.InventoryItem, 0, len(calls))
	for _, c := range calls {
		var item models.InventoryItem
		require.NoError(t, json.Unmarshal(c.Payload, &item))
		items = append(items, item)
	}
	return items
}

func TestSync_ResolvedConflictRewritesQueuedUpdate(t *testing.T) {
	tests := []struct {
		name       string
		strategy   models.Strategy
		localNotes string
		wantNotes  string
		wantQty    float64
		wantSent   bool
	}{
		{name: "server wins drops stale edit", strategy: models.StrategyServerWins, wantQty: 9},
		{name: "client wins sends local edit", strategy: models.StrategyClientWins, wantQty: 5, wantSent: true},
		{name: "merge equal to server drops stale edit", strategy: models.StrategyMerge, wantQty: 9},
		{name: "merge sends merged version", strategy: models.StrategyMerge, localNotes: "top shelf", wantNotes: "top shelf", wantQty: 9, wantSent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				calls []models.PendingOperation
				mu    stdsync.Mutex
			)
			env := newTestEnv(t, &ServerAPIMock{
				FetchEntitiesFunc:  serverReturns(inventory(t, "X", t0+2*day, 9)),
				ApplyOperationFunc: echoServer(&calls, &mu),
			}, WithStrategy(tt.strategy))
			staleEdit(t, env, tt.localNotes)

			res, err := env.svc.Sync(context.Background(), hh, models.KindInventory)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Resolved)
			assert.Empty(t, res.Conflicts)

			sent := sentItems(t, calls)
			if tt.wantSent {
				require.Len(t, sent, 1)
				assert.Equal(t, tt.wantQty, sent[0].Quantity)
				assert.Equal(t, tt.wantNotes, sent[0].Notes)
			} else {
				assert.Empty(t, sent, "losing local edit must not reach the server")
			}

			assert.Empty(t, env.queue(t))
			records, _ := env.snapshot(t)
			assert.Equal(t, tt.wantQty, quantityOf(t, records, "X"))
			assert.Equal(t, testNow.UnixMilli(), env.watermark(t))
		})
	}
}

func TestSync_OpenConflictHoldsQueuedUpdate(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(inventory(t, "X", t0+2*day, 9)),
	}, WithStrategy(models.StrategyManual))
	staleEdit(t, env, "")

	res, err := env.svc.Sync(context.Background(), hh, models.KindInventory)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Empty(t, env.api.ApplyOperationCalls())
	assert.Equal(t, 1, res.Replay.Held)
	assert.Equal(t, 1, res.Replay.Remaining)

	ops := env.queue(t)
	require.Len(t, ops, 1)
	assert.Equal(t, 0, ops[0].RetryCount)
	assert.False(t, ops[0].IsParked())
}

func TestResolveManual_SettlesQueuedUpdate(t *testing.T) {
	tests := []struct {
		name     string
		choice   models.Strategy
		wantQty  float64
		wantSent bool
	}{
		{name: "server wins", choice: models.StrategyServerWins, wantQty: 9},
		{name: "client wins", choice: models.StrategyClientWins, wantQty: 5, wantSent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				calls []models.PendingOperation
				mu    stdsync.Mutex
			)
			env := newTestEnv(t, &ServerAPIMock{
				FetchEntitiesFunc:  serverReturns(inventory(t, "X", t0+2*day, 9)),
				ApplyOperationFunc: echoServer(&calls, &mu),
			}, WithStrategy(models.StrategyManual))
			ctx := context.Background()
			staleEdit(t, env, "")

			_, err := env.svc.Sync(ctx, hh, models.KindInventory)
			require.NoError(t, err)
			require.Empty(t, calls)

			_, err = env.svc.ResolveManual(ctx, hh, models.KindInventory, "X", tt.choice)
			require.NoError(t, err)

			report, err := env.svc.ReplayAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, report.Held)

			sent := sentItems(t, calls)
			if tt.wantSent {
				require.Len(t, sent, 1)
				assert.Equal(t, 5.0, sent[0].Quantity)
			} else {
				assert.Empty(t, sent)
			}
			assert.Empty(t, env.queue(t))

			records, _ := env.snapshot(t)
			assert.Equal(t, tt.wantQty, quantityOf(t, records, "X"))
		})
	}
}

func TestReconcile_LocalOnlyAndPendingDeletes(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{})
	ctx := context.Background()

	tempID := models.GenerateOptimisticID()
	_, err := env.store.AddPendingOperation(ctx, &models.PendingOperation{
		Kind: models.OperationCreate, HouseholdID: hh,
		Target: models.Target{Kind: models.KindInventory, EntityID: tempID},
	})
	require.NoError(t, err)
	_, err = env.store.AddPendingOperation(ctx, &models.PendingOperation{
		Kind: models.OperationDelete, HouseholdID: hh,
		Target: models.Target{Kind: models.KindInventory, EntityID: "gone"},
	})
	require.NoError(t, err)

	local := []models.Record{
		inventory(t, tempID, t0+day, 1),
		inventory(t, "deleted-on-server", t0, 1),
	}
	server := []models.Record{
		inventory(t, "gone", t0, 1),
		inventory(t, "fresh", t0, 3),
	}

	res, err := env.svc.Reconcile(ctx, local, server, hh, models.KindInventory, models.StrategyMerge)
	require.NoError(t, err)

	var ids []string
	for _, r := range res.Synced {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"fresh", tempID}, ids)
	assert.Equal(t, StateIdle, env.svc.State(hh, models.KindInventory))
}

func TestReconcile_NewerLocalWithoutConflictKept(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{})
	ctx := context.Background()
	require.NoError(t, env.store.SaveLastSyncTimestamp(ctx, hh, models.KindInventory, t0+day))

	// сервер не менялся после watermark, локальная правка новее
	res, err := env.svc.Reconcile(ctx,
		[]models.Record{inventory(t, "a", t0+2*day, 7)},
		[]models.Record{inventory(t, "a", t0, 1)},
		hh, models.KindInventory, models.StrategyServerWins)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 7.0, quantityOf(t, res.Synced, "a"))
}

func addOp(t *testing.T, env *testEnv, householdID string, kind models.OperationKind, entityID string, payload string) string {
	t.Helper()
	op := &models.PendingOperation{
		Kind:        kind,
		HouseholdID: householdID,
		Target:      models.Target{Kind: models.KindInventory, EntityID: entityID},
	}
	if payload != "" {
		op.Payload = json.RawMessage(payload)
	}
	id, err := env.store.AddPendingOperation(context.Background(), op)
	require.NoError(t, err)
	return id
}

func echoServer(calls *[]models.PendingOperation, mu *stdsync.Mutex) func(context.Context, *models.PendingOperation) (*models.Record, error) {
	return func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
		mu.Lock()
		*calls = append(*calls, *op)
		mu.Unlock()
		return &models.Record{ID: op.Target.EntityID, HouseholdID: op.HouseholdID, Kind: op.Target.Kind, Data: op.Payload, UpdatedAt: testNow}, nil
	}
}

func TestReplay_FIFOAndRemoval(t *testing.T) {
	var (
		calls []models.PendingOperation
		mu    stdsync.Mutex
	)
	env := newTestEnv(t, &ServerAPIMock{ApplyOperationFunc: echoServer(&calls, &mu)})

	first := addOp(t, env, hh, models.OperationCreate, "a", `{"id":"a"}`)
	second := addOp(t, env, hh, models.OperationUpdate, "a", `{"id":"a","quantity":2}`)
	third := addOp(t, env, hh, models.OperationDelete, "b", "")

	report, err := env.svc.ReplayAll(context.Background())
	require.NoError(t, err)

	require.Len(t, calls, 3)
	assert.Equal(t, []string{first, second, third}, []string{calls[0].ID, calls[1].ID, calls[2].ID})
	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, 0, report.Remaining)
	assert.Empty(t, env.queue(t))

	records, _ := env.snapshot(t)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
}

func TestReplay_FailureIncrementsRetryAndHalts(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			return nil, apperr.Transient(errors.New("timeout"), "apply")
		},
	})

	addOp(t, env, hh, models.OperationCreate, "a", `{}`)
	addOp(t, env, hh, models.OperationCreate, "b", `{}`)

	report, err := env.svc.ReplayAll(context.Background())
	require.NoError(t, err)
	require.Contains(t, report.Errors, hh)
	assert.True(t, apperr.IsRetryable(report.Errors[hh]))
	assert.Equal(t, 2, report.Remaining)

	assert.Len(t, env.api.ApplyOperationCalls(), 1, "replay halts on first failure")

	ops := env.queue(t)
	require.Len(t, ops, 2)
	assert.Equal(t, 1, ops[0].RetryCount)
	assert.Contains(t, ops[0].LastError, "timeout")
	assert.Equal(t, models.OperationQueued, ops[0].Status)
	assert.Equal(t, 0, ops[1].RetryCount)
}

func TestReplay_ParksAfterMaxRetries(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			return nil, errors.New("server down")
		},
	}, WithMaxRetries(2))
	ctx := context.Background()
	id := addOp(t, env, hh, models.OperationUpdate, "a", `{}`)

	_, err := env.svc.ReplayAll(ctx)
	require.NoError(t, err)
	report, err := env.svc.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Parked)

	ops := env.queue(t)
	require.Len(t, ops, 1)
	assert.True(t, ops[0].IsParked())
	assert.Equal(t, 2, ops[0].RetryCount)

	// parked операция не воспроизводится, но и не удаляется
	report, err = env.svc.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Len(t, env.api.ApplyOperationCalls(), 2)
	assert.Equal(t, 1, report.Remaining)

	require.NoError(t, env.svc.Requeue(ctx, id))
	ops = env.queue(t)
	require.Len(t, ops, 1)
	assert.False(t, ops[0].IsParked())
	assert.Equal(t, 0, ops[0].RetryCount)

	require.NoError(t, env.svc.Discard(ctx, id))
	assert.Empty(t, env.queue(t))
	assert.ErrorIs(t, env.svc.Discard(ctx, id), storage.ErrOperationNotFound)
}

func TestReplay_RejectedParksAndContinues(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			if op.Target.EntityID == "bad" {
				return nil, apperr.Rejected(errors.New("422"), "invalid payload")
			}
			return &models.Record{ID: op.Target.EntityID, Kind: op.Target.Kind, HouseholdID: hh, Data: op.Payload}, nil
		},
	})

	addOp(t, env, hh, models.OperationUpdate, "bad", `{}`)
	addOp(t, env, hh, models.OperationUpdate, "good", `{}`)

	report, err := env.svc.ReplayAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Parked)
	assert.Equal(t, 1, report.Remaining)

	ops := env.queue(t)
	require.Len(t, ops, 1)
	assert.Equal(t, "bad", ops[0].Target.EntityID)
	assert.True(t, ops[0].IsParked())
}

func TestReplay_HeldEntityKeepsOrderOfOthers(t *testing.T) {
	var (
		calls []models.PendingOperation
		mu    stdsync.Mutex
	)
	env := newTestEnv(t, &ServerAPIMock{ApplyOperationFunc: echoServer(&calls, &mu)})
	ctx := context.Background()

	require.NoError(t, env.store.SaveConflict(ctx, &models.SyncConflict{
		ID: "b", HouseholdID: hh, Kind: models.KindInventory,
		LocalData:  inventory(t, "b", t0+day, 1),
		ServerData: inventory(t, "b", t0+2*day, 2),
	}))

	addOp(t, env, hh, models.OperationUpdate, "a", `{}`)
	held := addOp(t, env, hh, models.OperationUpdate, "b", `{}`)
	addOp(t, env, hh, models.OperationUpdate, "c", `{}`)

	report, err := env.svc.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Held)
	assert.Equal(t, 1, report.Remaining)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{"a", "c"}, []string{calls[0].Target.EntityID, calls[1].Target.EntityID})

	ops := env.queue(t)
	require.Len(t, ops, 1)
	assert.Equal(t, held, ops[0].ID)
}

func TestReplay_AuthFailureLeavesQueueUntouched(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			return nil, apperr.Authentication(errors.New("401"), "session rejected")
		},
	})
	addOp(t, env, hh, models.OperationUpdate, "a", `{}`)

	report, err := env.svc.ReplayAll(context.Background())
	require.NoError(t, err)
	require.Contains(t, report.Errors, hh)
	assert.True(t, apperr.Is(report.Errors[hh], apperr.ErrAuthentication))
	assert.False(t, apperr.IsRetryable(report.Errors[hh]))

	ops := env.queue(t)
	require.Len(t, ops, 1)
	assert.Equal(t, 0, ops[0].RetryCount)
	assert.Empty(t, ops[0].LastError)
	assert.False(t, ops[0].IsParked())
}

func TestReplay_OptimisticIDRewrite(t *testing.T) {
	tempID := models.GenerateOptimisticID()
	var seen []models.PendingOperation

	env := newTestEnv(t, &ServerAPIMock{
		ApplyOperationFunc: func(ctx context.Context, op *models.PendingOperation) (*models.Record, error) {
			seen = append(seen, *op)
			id := op.Target.EntityID
			if op.Kind == models.OperationCreate {
				id = "srv-1"
			}
			r := &models.Record{ID: id, HouseholdID: hh, Kind: op.Target.Kind, Data: op.Payload, UpdatedAt: testNow}
			return r, r.Stamp()
		},
	})
	env.seedSnapshot(t, inventory(t, tempID, t0, 1))

	addOp(t, env, hh, models.OperationCreate, tempID, `{"id":"`+tempID+`","quantity":1}`)
	addOp(t, env, hh, models.OperationUpdate, tempID, `{"id":"`+tempID+`","quantity":4}`)

	_, err := env.svc.ReplayAll(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "srv-1", seen[1].Target.EntityID)
	assert.JSONEq(t, `{"id":"srv-1","quantity":4}`, string(seen[1].Payload))

	records, _ := env.snapshot(t)
	require.Len(t, records, 1)
	assert.Equal(t, "srv-1", records[0].ID)
	assert.Equal(t, 4.0, quantityOf(t, records, "srv-1"))
}

func TestReplayAll_IndependentHouseholds(t *testing.T) {
	var (
		calls []models.PendingOperation
		mu    stdsync.Mutex
	)
	env := newTestEnv(t, &ServerAPIMock{ApplyOperationFunc: echoServer(&calls, &mu)})

	addOp(t, env, "h1", models.OperationUpdate, "a", `{}`)
	addOp(t, env, "h2", models.OperationUpdate, "b", `{}`)
	addOp(t, env, "h1", models.OperationUpdate, "c", `{}`)

	report, err := env.svc.ReplayAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Applied)

	// порядок внутри household сохраняется
	var h1 []string
	for _, c := range calls {
		if c.HouseholdID == "h1" {
			h1 = append(h1, c.Target.EntityID)
		}
	}
	assert.Equal(t, []string{"a", "c"}, h1)
}

func TestSync_CoalescesConcurrentTriggers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once stdsync.Once

	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
			once.Do(func() { close(started) })
			<-release
			return nil, nil
		},
	})

	var wg stdsync.WaitGroup
	results := make([]*CycleResult, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.svc.Sync(context.Background(), hh, models.KindInventory)
			assert.NoError(t, err)
			results[i] = res
		}()
		if i == 0 {
			<-started
			assert.Equal(t, StateFetching, env.svc.State(hh, models.KindInventory))
		}
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Len(t, env.api.FetchEntitiesCalls(), 1)
	assert.Same(t, results[0], results[1])
	assert.Equal(t, StateIdle, env.svc.State(hh, models.KindInventory))
}

func TestCancel_AbortsInFlightCycle(t *testing.T) {
	started := make(chan struct{})
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: func(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := env.svc.Sync(context.Background(), hh, models.KindInventory)
		errCh <- err
	}()

	<-started
	env.svc.Cancel(hh)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cycle was not cancelled")
	}
	assert.Equal(t, int64(0), env.watermark(t))
}

func TestSyncHousehold_AllKinds(t *testing.T) {
	env := newTestEnv(t, &ServerAPIMock{
		FetchEntitiesFunc: serverReturns(),
	})

	results, err := env.svc.SyncHousehold(context.Background(), hh)
	require.NoError(t, err)
	assert.Len(t, results, len(models.AllKinds))

	calls := env.api.FetchEntitiesCalls()
	require.Len(t, calls, len(models.AllKinds))
	for i, kind := range models.AllKinds {
		assert.Equal(t, kind, calls[i].Kind)
	}
}
