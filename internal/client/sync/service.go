package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/conflict"
	"github.com/iudanet/homesync/internal/models"
)

//go:generate moq -out serverapi_mock.go . ServerAPI
//go:generate moq -out service_mock.go . Service

// ServerAPI is the part of the HTTP client the orchestrator needs.
type ServerAPI interface {
	// FetchEntities returns the authoritative snapshot of one data kind
	FetchEntities(ctx context.Context, householdID string, kind models.DataKind) ([]models.Record, error)
	// ApplyOperation replays a pending operation and returns the stored record
	ApplyOperation(ctx context.Context, op *models.PendingOperation) (*models.Record, error)
}

// Store объединяет локальные хранилища, которые использует оркестратор.
// boltdb.Storage реализует его целиком.
type Store interface {
	storage.CacheStorage
	storage.PendingStorage
	storage.WatermarkStorage
	storage.ConflictStorage
}

// Service определяет интерфейс оркестратора синхронизации
type Service interface {
	// Sync выполняет один цикл синхронизации (household, kind).
	// Параллельные вызовы для одного ключа объединяются в один цикл.
	Sync(ctx context.Context, householdID string, kind models.DataKind) (*CycleResult, error)

	// SyncHousehold синхронизирует все виды данных household
	SyncHousehold(ctx context.Context, householdID string) ([]*CycleResult, error)

	// Reconcile сравнивает снимки и разрешает конфликты без сетевых вызовов
	Reconcile(ctx context.Context, local, server []models.Record, householdID string, kind models.DataKind, strategy models.Strategy) (*Result, error)

	// ReplayAll воспроизводит очереди всех household; household обрабатываются параллельно
	ReplayAll(ctx context.Context) (*ReplayReport, error)

	// ResolveManual применяет решение пользователя к открытому конфликту
	ResolveManual(ctx context.Context, householdID string, kind models.DataKind, id string, choice models.Strategy) (*models.Record, error)

	// OpenConflicts возвращает конфликты, ожидающие решения
	OpenConflicts(ctx context.Context, householdID string, kind models.DataKind) ([]*models.SyncConflict, error)

	// Requeue возвращает parked операцию в очередь со сброшенным счетчиком
	Requeue(ctx context.Context, operationID string) error

	// Discard удаляет операцию из очереди по явному решению пользователя
	Discard(ctx context.Context, operationID string) error

	// Cancel отменяет циклы household, выполняющиеся в данный момент
	Cancel(householdID string)

	// State возвращает текущее состояние ключа (household, kind)
	State(householdID string, kind models.DataKind) State
}

// State состояние цикла синхронизации для (household, kind)
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateDetecting State = "detecting"
	StateResolving State = "resolving"
	StateApplying  State = "applying"
	StateReplaying State = "replaying"
)

// DefaultMaxRetries количество неудачных replay, после которого операция паркуется
const DefaultMaxRetries = 8

// Failure описывает сущность, конфликт которой не удалось разрешить
type Failure struct {
	Err error
	ID  string
}

// Result результат сверки одного вида данных
type Result struct {
	Conflicts []models.SyncConflict // открытые конфликты (manual), исключены из цикла
	Synced    []models.Record       // новый локальный снимок
	Failed    []Failure             // сущности, которые не удалось разрешить
	Resolved  int                   // число автоматически разрешенных конфликтов

	settled []settlement // автоматически разрешенные конфликты, очередь по ним нужно согласовать
}

// settlement разрешенная версия сущности и серверная версия, против которой она получена
type settlement struct {
	resolved   models.Record
	serverData json.RawMessage
}

// CycleResult итог одного цикла синхронизации
type CycleResult struct {
	Result
	Replay      ReplayReport
	HouseholdID string
	Kind        models.DataKind
	Watermark   int64 // 0 если watermark не сдвигался
}

type service struct {
	api        ServerAPI
	store      Store
	snapshots  *storage.Snapshots
	detector   *conflict.Detector
	logger     *slog.Logger
	now        func() time.Time
	strategies map[models.DataKind]models.Strategy
	strategy   models.Strategy
	maxRetries int

	group singleflight.Group

	mu      stdsync.Mutex
	states  map[string]State
	cancels map[string]map[uint64]context.CancelFunc
	nextID  uint64

	replayMu    stdsync.Mutex
	replayLocks map[string]*stdsync.Mutex
}

// Option настраивает сервис синхронизации
type Option func(*service)

// WithStrategy задает стратегию разрешения конфликтов по умолчанию (merge)
func WithStrategy(s models.Strategy) Option {
	return func(svc *service) { svc.strategy = s }
}

// WithKindStrategy задает стратегию для одного вида данных
func WithKindStrategy(kind models.DataKind, s models.Strategy) Option {
	return func(svc *service) { svc.strategies[kind] = s }
}

// WithMaxRetries задает лимит неудачных replay до парковки операции
func WithMaxRetries(n int) Option {
	return func(svc *service) { svc.maxRetries = n }
}

// WithDetector заменяет детектор конфликтов (например, с другим окном допуска)
func WithDetector(d *conflict.Detector) Option {
	return func(svc *service) { svc.detector = d }
}

// WithClock подменяет часы (для тестов)
func WithClock(now func() time.Time) Option {
	return func(svc *service) { svc.now = now }
}

// NewService creates a new sync service.
// snapshots must be shared with every other writer of the local snapshots.
func NewService(api ServerAPI, store Store, snapshots *storage.Snapshots, logger *slog.Logger, opts ...Option) Service {
	svc := &service{
		api:         api,
		store:       store,
		snapshots:   snapshots,
		logger:      logger,
		now:         time.Now,
		strategy:    models.StrategyMerge,
		strategies:  make(map[models.DataKind]models.Strategy),
		maxRetries:  DefaultMaxRetries,
		states:      make(map[string]State),
		cancels:     make(map[string]map[uint64]context.CancelFunc),
		replayLocks: make(map[string]*stdsync.Mutex),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.detector == nil {
		svc.detector = conflict.NewDetector(store)
	}
	return svc
}

func stateKey(householdID string, kind models.DataKind) string {
	return householdID + "/" + string(kind)
}

func (s *service) strategyFor(kind models.DataKind) models.Strategy {
	if st, ok := s.strategies[kind]; ok {
		return st
	}
	return s.strategy
}

// State возвращает текущее состояние ключа
func (s *service) State(householdID string, kind models.DataKind) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[stateKey(householdID, kind)]; ok {
		return st
	}
	return StateIdle
}

func (s *service) setState(householdID string, kind models.DataKind, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == StateIdle {
		delete(s.states, stateKey(householdID, kind))
		return
	}
	s.states[stateKey(householdID, kind)] = st
}

// track регистрирует отменяемый контекст цикла household
func (s *service) track(ctx context.Context, householdID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.cancels[householdID] == nil {
		s.cancels[householdID] = make(map[uint64]context.CancelFunc)
	}
	s.cancels[householdID][id] = cancel
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		delete(s.cancels[householdID], id)
		if len(s.cancels[householdID]) == 0 {
			delete(s.cancels, householdID)
		}
		s.mu.Unlock()
		cancel()
	}
}

// Cancel отменяет циклы household. Уже примененные локальные изменения не откатываются.
func (s *service) Cancel(householdID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.cancels[householdID] {
		cancel()
	}
}

// Sync performs one reconciliation cycle for (householdID, kind):
//  1. fetch the server snapshot
//  2. detect conflicts against the local snapshot
//  3. resolve them with the configured strategy (manual ones stay open)
//  4. store the merged snapshot and advance the watermark
//  5. replay pending operations of the household
//
// A fetch failure returns before anything local is changed.
func (s *service) Sync(ctx context.Context, householdID string, kind models.DataKind) (*CycleResult, error) {
	v, err, shared := s.group.Do(stateKey(householdID, kind), func() (any, error) {
		cctx, done := s.track(ctx, householdID)
		defer done()
		return s.runCycle(cctx, householdID, kind)
	})
	if shared {
		s.logger.Debug("Sync trigger coalesced", "household_id", householdID, "kind", kind)
	}
	if err != nil {
		return nil, err
	}
	return v.(*CycleResult), nil
}

// SyncHousehold синхронизирует все виды данных household последовательно
func (s *service) SyncHousehold(ctx context.Context, householdID string) ([]*CycleResult, error) {
	results := make([]*CycleResult, 0, len(models.AllKinds))
	var errs []error
	for _, kind := range models.AllKinds {
		res, err := s.Sync(ctx, householdID, kind)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (s *service) runCycle(ctx context.Context, householdID string, kind models.DataKind) (*CycleResult, error) {
	defer s.setState(householdID, kind, StateIdle)
	started := s.now()

	s.logger.Info("Starting synchronization", "household_id", householdID, "kind", kind)

	// 1. Fetch
	s.setState(householdID, kind, StateFetching)
	server, err := s.api.FetchEntities(ctx, householdID, kind)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !apperr.IsCategorized(err) {
			err = apperr.Transient(err, "fetch server snapshot")
		}
		s.logger.Warn("Failed to fetch server snapshot, cycle aborted",
			"household_id", householdID, "kind", kind, slog.Any("error", err))
		return nil, err
	}

	cycle := &CycleResult{HouseholdID: householdID, Kind: kind}
	strategy := s.strategyFor(kind)

	// 2-4. Detect, resolve, apply под блокировкой снимка: без сетевых вызовов
	err = s.snapshots.Update(ctx, householdID, kind, func(local []models.Record) ([]models.Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.reconcile(ctx, local, server, householdID, kind, strategy, true)
		if err != nil {
			return nil, err
		}
		cycle.Result = *res
		s.setState(householdID, kind, StateApplying)
		return res.Synced, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperr.Persistence(err, "apply server snapshot")
	}

	if err := s.persistOutcome(ctx, householdID, kind, cycle); err != nil {
		return nil, apperr.Persistence(err, "persist reconciliation outcome")
	}

	// 5. Replay
	s.setState(householdID, kind, StateReplaying)
	report, err := s.replayHousehold(ctx, householdID)
	cycle.Replay = *report
	if err != nil {
		s.logger.Warn("Replay halted", "household_id", householdID, slog.Any("error", err))
	}

	s.logger.Info("Synchronization completed",
		"household_id", householdID,
		"kind", kind,
		"synced", len(cycle.Synced),
		"resolved", cycle.Resolved,
		"open_conflicts", len(cycle.Conflicts),
		"failed", len(cycle.Failed),
		"replayed", cycle.Replay.Applied,
		"parked", cycle.Replay.Parked,
		"duration", s.now().Sub(started))

	return cycle, nil
}

// persistOutcome сохраняет открытые конфликты, согласует очередь с разрешенными версиями
// и сдвигает watermark, если для вида данных не осталось нерешенных сущностей.
func (s *service) persistOutcome(ctx context.Context, householdID string, kind models.DataKind, cycle *CycleResult) error {
	for i := range cycle.Conflicts {
		if err := s.store.SaveConflict(ctx, &cycle.Conflicts[i]); err != nil {
			return err
		}
	}

	for i := range cycle.settled {
		st := &cycle.settled[i]
		if err := s.settlePending(ctx, householdID, kind, &st.resolved, st.serverData); err != nil {
			return err
		}
	}

	if len(cycle.Conflicts) > 0 || len(cycle.Failed) > 0 {
		s.logger.Info("Watermark kept, unresolved entities remain",
			"household_id", householdID, "kind", kind,
			"open_conflicts", len(cycle.Conflicts), "failed", len(cycle.Failed))
		return nil
	}

	ts := s.now().UnixMilli()
	if err := s.store.SaveLastSyncTimestamp(ctx, householdID, kind, ts); err != nil {
		return err
	}
	cycle.Watermark = ts
	return nil
}

// settlePending приводит очередь сущности в соответствие с разрешенным конфликтом.
//
// Ожидающие update несут версию, проигравшую разрешение, и не должны перезаписать
// результат на сервере. Если результат совпадает с серверной версией, они удаляются.
// Иначе остается одна операция с разрешенной версией в payload.
func (s *service) settlePending(ctx context.Context, householdID string, kind models.DataKind, resolved *models.Record, serverData json.RawMessage) error {
	ops, err := s.store.GetHouseholdOperations(ctx, householdID)
	if err != nil {
		return err
	}

	var updates []*models.PendingOperation
	for _, op := range ops {
		if op.Kind == models.OperationUpdate && op.Target.Kind == kind && op.Target.EntityID == resolved.ID {
			updates = append(updates, op)
		}
	}

	if bytes.Equal(resolved.Data, serverData) {
		for _, op := range updates {
			if err := s.store.RemovePendingOperation(ctx, op.ID); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			s.logger.Info("Superseded updates dropped",
				"household_id", householdID, "kind", kind, "id", resolved.ID, "count", len(updates))
		}
		return nil
	}

	if len(updates) == 0 {
		_, err := s.store.AddPendingOperation(ctx, &models.PendingOperation{
			Kind:        models.OperationUpdate,
			HouseholdID: householdID,
			Target:      models.Target{Kind: kind, EntityID: resolved.ID},
			Payload:     resolved.Data,
		})
		return err
	}

	last := updates[len(updates)-1]
	for _, op := range updates[:len(updates)-1] {
		if err := s.store.RemovePendingOperation(ctx, op.ID); err != nil {
			return err
		}
	}
	return s.store.UpdatePendingOperation(ctx, last.ID, models.PendingOperationPatch{Payload: resolved.Data})
}

// Run синхронизирует households каждые interval до отмены ctx
func Run(ctx context.Context, svc Service, households []string, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, h := range households {
			if _, err := svc.SyncHousehold(ctx, h); err != nil && ctx.Err() == nil {
				logger.Warn("Periodic sync failed", "household_id", h, slog.Any("error", err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
