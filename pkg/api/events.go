package api

import (
	"fmt"
	"time"

	"github.com/iudanet/homesync/internal/models"
)

// EventForRecord builds the event announcing an accepted mutation of r.
// prev is the stored state before the mutation, nil for creations.
func EventForRecord(op models.OperationKind, r *models.Record, prev *models.Record) (Event, error) {
	deleted := op == models.OperationDelete || r.Deleted

	switch r.Kind {
	case models.KindInventory:
		if deleted {
			return &InventoryDeleted{HouseholdID: r.HouseholdID, ItemID: r.ID}, nil
		}
		item, err := models.DecodeData[models.InventoryItem](r)
		if err != nil {
			return nil, err
		}
		return &InventoryUpdated{HouseholdID: r.HouseholdID, Item: *item, Version: r.Version}, nil

	case models.KindShoppingList:
		if deleted {
			return &ShoppingItemDeleted{HouseholdID: r.HouseholdID, ItemID: r.ID}, nil
		}
		item, err := models.DecodeData[models.ShoppingListItem](r)
		if err != nil {
			return nil, err
		}
		if op == models.OperationCreate || prev == nil {
			return &ShoppingItemAdded{HouseholdID: r.HouseholdID, Item: *item, Version: r.Version}, nil
		}
		before, err := models.DecodeData[models.ShoppingListItem](prev)
		if err != nil {
			return nil, err
		}
		if before.Completed != item.Completed {
			return &ShoppingItemCompleted{HouseholdID: r.HouseholdID, Item: *item, Version: r.Version}, nil
		}
		return &ShoppingItemUpdated{HouseholdID: r.HouseholdID, Item: *item, Version: r.Version}, nil

	case models.KindMealPlan:
		entry, err := models.DecodeData[models.MealPlanEntry](r)
		if err != nil {
			return nil, err
		}
		entry.ID = r.ID
		return &MealPlanUpdated{HouseholdID: r.HouseholdID, Entry: *entry, Version: r.Version, Deleted: deleted}, nil

	case models.KindRecipes:
		recipe, err := models.DecodeData[models.Recipe](r)
		if err != nil {
			return nil, err
		}
		recipe.ID = r.ID
		return &RecipeUpdated{HouseholdID: r.HouseholdID, Recipe: *recipe, Version: r.Version, Deleted: deleted}, nil
	}

	return nil, fmt.Errorf("no event for data kind %q", r.Kind)
}

// Change описывает, как событие меняет локальный снимок одного вида данных
type Change struct {
	Kind      models.DataKind
	Upsert    *models.Record // запись для вставки или замены
	DeleteIDs []string       // удаляемые записи
	Resync    bool           // событие не несет полного состояния, нужна синхронизация
}

// ChangeFor translates a received event into a cache change.
func ChangeFor(e Event) (Change, error) {
	switch ev := e.(type) {
	case *InventoryUpdated:
		r, err := recordOf(ev.HouseholdID, models.KindInventory, ev.Item.ID, ev.Version, &ev.Item, ev.Item.UpdatedAt)
		return Change{Kind: models.KindInventory, Upsert: r}, err
	case *InventoryDeleted:
		return Change{Kind: models.KindInventory, DeleteIDs: []string{ev.ItemID}}, nil
	case *ShoppingItemAdded:
		r, err := recordOf(ev.HouseholdID, models.KindShoppingList, ev.Item.ID, ev.Version, &ev.Item, ev.Item.UpdatedAt)
		return Change{Kind: models.KindShoppingList, Upsert: r}, err
	case *ShoppingItemUpdated:
		r, err := recordOf(ev.HouseholdID, models.KindShoppingList, ev.Item.ID, ev.Version, &ev.Item, ev.Item.UpdatedAt)
		return Change{Kind: models.KindShoppingList, Upsert: r}, err
	case *ShoppingItemCompleted:
		r, err := recordOf(ev.HouseholdID, models.KindShoppingList, ev.Item.ID, ev.Version, &ev.Item, ev.Item.UpdatedAt)
		return Change{Kind: models.KindShoppingList, Upsert: r}, err
	case *ShoppingItemDeleted:
		return Change{Kind: models.KindShoppingList, DeleteIDs: []string{ev.ItemID}}, nil
	case *ShoppingBulkOperation:
		if ev.Operation == BulkDelete {
			return Change{Kind: models.KindShoppingList, DeleteIDs: ev.ItemIDs}, nil
		}
		return Change{Kind: models.KindShoppingList, Resync: true}, nil
	case *MealPlanUpdated:
		if ev.Deleted {
			return Change{Kind: models.KindMealPlan, DeleteIDs: []string{ev.Entry.ID}}, nil
		}
		r, err := recordOf(ev.HouseholdID, models.KindMealPlan, ev.Entry.ID, ev.Version, &ev.Entry, ev.Entry.UpdatedAt)
		return Change{Kind: models.KindMealPlan, Upsert: r}, err
	case *RecipeUpdated:
		if ev.Deleted {
			return Change{Kind: models.KindRecipes, DeleteIDs: []string{ev.Recipe.ID}}, nil
		}
		r, err := recordOf(ev.HouseholdID, models.KindRecipes, ev.Recipe.ID, ev.Version, &ev.Recipe, ev.Recipe.UpdatedAt)
		return Change{Kind: models.KindRecipes, Upsert: r}, err
	}
	return Change{}, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
}

func recordOf[T any](householdID string, kind models.DataKind, id string, version int64, v *T, updatedAt time.Time) (*models.Record, error) {
	r := &models.Record{
		ID:          id,
		HouseholdID: householdID,
		Kind:        kind,
		UpdatedAt:   updatedAt,
		Version:     version,
	}
	if err := models.EncodeData(r, v); err != nil {
		return nil, err
	}
	return r, nil
}
