package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/homesync/internal/models"
)

// formatMillis форматирует epoch-ms, 0 означает "never"
func formatMillis(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

// parseAssignments превращает аргументы key=value в JSON объект.
// Значение, которое разбирается как JSON (число, bool, массив), сохраняет тип
func parseAssignments(args []string) (json.RawMessage, error) {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), "{") {
		return json.RawMessage(args[0]), nil
	}

	fields := make(map[string]json.RawMessage, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected field=value, got %q", a)
		}
		if json.Valid([]byte(value)) && value != "" {
			fields[key] = json.RawMessage(value)
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}

// summary однострочное описание записи для list
func summary(r *models.Record) string {
	switch r.Kind {
	case models.KindInventory:
		if it, err := models.DecodeData[models.InventoryItem](r); err == nil {
			s := fmt.Sprintf("%s: %s", it.Name, amount(it.Quantity, it.Unit))
			if it.Location != "" {
				s += " @ " + it.Location
			}
			return s
		}
	case models.KindShoppingList:
		if it, err := models.DecodeData[models.ShoppingListItem](r); err == nil {
			mark := "[ ]"
			if it.Completed {
				mark = "[x]"
			}
			s := fmt.Sprintf("%s %s", mark, it.Name)
			if it.Quantity > 0 {
				s += " (" + amount(it.Quantity, it.Unit) + ")"
			}
			return s
		}
	case models.KindMealPlan:
		if e, err := models.DecodeData[models.MealPlanEntry](r); err == nil {
			return strings.TrimSpace(fmt.Sprintf("%s %s", e.Date, e.Meal))
		}
	case models.KindRecipes:
		if rec, err := models.DecodeData[models.Recipe](r); err == nil {
			s := rec.Name
			if rec.Favorite {
				s += " *"
			}
			return s
		}
	}
	return string(r.Data)
}

func amount(q float64, unit string) string {
	return strings.TrimSpace(strconv.FormatFloat(q, 'f', -1, 64) + " " + unit)
}
