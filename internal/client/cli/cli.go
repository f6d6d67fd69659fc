package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/homesync/internal/client/data"
	"github.com/iudanet/homesync/internal/client/iocli"
	"github.com/iudanet/homesync/internal/client/realtime"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/client/sync"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/pkg/api"
)

//go:generate moq -out serverapi_mock.go . ServerAPI

// ServerAPI часть HTTP клиента, которую используют команды напрямую
type ServerAPI interface {
	Households(ctx context.Context) ([]api.Household, error)
	Stats(ctx context.Context) (*api.StatsResponse, error)
	Health(ctx context.Context) error
	BulkShopping(ctx context.Context, householdID string, req api.BulkShoppingRequest) (*api.BulkShoppingResponse, error)
}

// LocalStore локальная очередь и watermarks
type LocalStore interface {
	storage.PendingStorage
	storage.WatermarkStorage
}

// Watcher держит realtime подписку до отмены ctx
type Watcher func(ctx context.Context, hook realtime.EventHook) error

// ErrNoHousehold команде нужен household
var ErrNoHousehold = errors.New("no household selected: use --household or HOMESYNC_HOUSEHOLD")

// Deps зависимости команд
type Deps struct {
	IO          iocli.IO
	Server      ServerAPI
	DataService data.Service
	SyncService sync.Service
	Store       LocalStore
	Watch       Watcher
	Household   string
	ServerURL   string
}

type Cli struct {
	io          iocli.IO
	server      ServerAPI
	dataService data.Service
	syncService sync.Service
	store       LocalStore
	watch       Watcher
	household   string
	serverURL   string
}

func New(d Deps) *Cli {
	return &Cli{
		io:          d.IO,
		server:      d.Server,
		dataService: d.DataService,
		syncService: d.SyncService,
		store:       d.Store,
		watch:       d.Watch,
		household:   d.Household,
		serverURL:   d.ServerURL,
	}
}

func (c *Cli) requireHousehold() (string, error) {
	if c.household == "" {
		return "", ErrNoHousehold
	}
	return c.household, nil
}

// parseKind принимает имя вида данных и его короткие формы
func parseKind(s string) (models.DataKind, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "inventory", "inv":
		return models.KindInventory, nil
	case "shopping_list", "shopping", "shop":
		return models.KindShoppingList, nil
	case "meal_plan", "meal", "meals":
		return models.KindMealPlan, nil
	case "recipes", "recipe":
		return models.KindRecipes, nil
	}
	return "", fmt.Errorf("unknown data kind: %s. Use: inventory, shopping, meal, recipe", s)
}

// splitSyncFlag убирает --sync из аргументов
func splitSyncFlag(args []string) ([]string, bool) {
	rest := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == "--sync" {
			found = true
			continue
		}
		rest = append(rest, a)
	}
	return rest, found
}

func PrintUsage(io iocli.IO) {
	io.Printf("%s", usageText)
}
