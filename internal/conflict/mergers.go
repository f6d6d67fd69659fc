package conflict

import (
	"github.com/iudanet/homesync/internal/models"
)

// MergerFor returns the field-level merger for a data kind.
//
// All mergers follow "most recently updated side wins" for numeric and boolean fields
// (server wins ties) and concatenate free-text notes as "<local>; <server>" when both
// sides hold different non-empty notes. Unknown kinds fall back to DefaultMerge.
func MergerFor(kind models.DataKind) Merger {
	switch kind {
	case models.KindInventory:
		return MergeInventory
	case models.KindShoppingList:
		return MergeShoppingList
	case models.KindMealPlan:
		return MergeMealPlan
	case models.KindRecipes:
		return MergeRecipe
	default:
		return DefaultMerge
	}
}

// MergeInventory merges inventory items.
func MergeInventory(local, server *models.Record) (*models.Record, error) {
	return mergeTyped(local, server, func(l, s *models.InventoryItem, localNewer bool) *models.InventoryItem {
		out := *s
		if localNewer {
			out = *l
		}
		out.Notes = mergeNotes(l.Notes, s.Notes)
		return &out
	})
}

// MergeShoppingList merges shopping list items.
func MergeShoppingList(local, server *models.Record) (*models.Record, error) {
	return mergeTyped(local, server, func(l, s *models.ShoppingListItem, localNewer bool) *models.ShoppingListItem {
		out := *s
		if localNewer {
			out = *l
		}
		out.Notes = mergeNotes(l.Notes, s.Notes)
		return &out
	})
}

// MergeMealPlan merges meal plan entries.
func MergeMealPlan(local, server *models.Record) (*models.Record, error) {
	return mergeTyped(local, server, func(l, s *models.MealPlanEntry, localNewer bool) *models.MealPlanEntry {
		out := *s
		if localNewer {
			out = *l
		}
		out.Notes = mergeNotes(l.Notes, s.Notes)
		return &out
	})
}

// MergeRecipe merges recipes. Ingredients follow the newer side like the other fields.
func MergeRecipe(local, server *models.Record) (*models.Record, error) {
	return mergeTyped(local, server, func(l, s *models.Recipe, localNewer bool) *models.Recipe {
		out := *s
		if localNewer {
			out = *l
		}
		out.Ingredients = append([]string(nil), out.Ingredients...)
		out.Notes = mergeNotes(l.Notes, s.Notes)
		return &out
	})
}

func mergeTyped[T any](local, server *models.Record, merge func(l, s *T, localNewer bool) *T) (*models.Record, error) {
	l, err := models.DecodeData[T](local)
	if err != nil {
		return nil, err
	}
	s, err := models.DecodeData[T](server)
	if err != nil {
		return nil, err
	}

	newer := latest(local, server)
	merged := newer.Clone()
	// идентичность записи всегда серверная
	merged.ID = server.ID
	merged.HouseholdID = server.HouseholdID
	merged.Kind = server.Kind
	merged.Version = server.Version

	if err := models.EncodeData(merged, merge(l, s, newer == local)); err != nil {
		return nil, err
	}
	return merged, nil
}

func mergeNotes(local, server string) string {
	switch {
	case local == server:
		return server
	case local == "":
		return server
	case server == "":
		return local
	default:
		return local + "; " + server
	}
}
