package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/homesync/internal/models"
)

var addUsage = "Usage: homesync add <inventory|shopping|meal|recipe> [field=value ...] [--sync]"

type fieldType int

const (
	fieldString fieldType = iota
	fieldNumber
	fieldInt
	fieldList
)

type promptField struct {
	key      string
	prompt   string
	typ      fieldType
	required bool
}

// addForms поля, которые запрашиваются интерактивно
var addForms = map[models.DataKind][]promptField{
	models.KindInventory: {
		{key: "name", prompt: "Name: ", required: true},
		{key: "quantity", prompt: "Quantity: ", typ: fieldNumber},
		{key: "unit", prompt: "Unit (kg, pcs): "},
		{key: "location", prompt: "Location (fridge, pantry): "},
		{key: "notes", prompt: "Notes: "},
	},
	models.KindShoppingList: {
		{key: "name", prompt: "Name: ", required: true},
		{key: "quantity", prompt: "Quantity: ", typ: fieldNumber},
		{key: "unit", prompt: "Unit: "},
		{key: "notes", prompt: "Notes: "},
	},
	models.KindMealPlan: {
		{key: "date", prompt: "Date (YYYY-MM-DD): ", required: true},
		{key: "meal", prompt: "Meal (breakfast, lunch, dinner): ", required: true},
		{key: "servings", prompt: "Servings: ", typ: fieldInt},
		{key: "recipe_id", prompt: "Recipe ID: "},
		{key: "notes", prompt: "Notes: "},
	},
	models.KindRecipes: {
		{key: "name", prompt: "Name: ", required: true},
		{key: "servings", prompt: "Servings: ", typ: fieldInt},
		{key: "ingredients", prompt: "Ingredients (comma separated): ", typ: fieldList},
		{key: "instructions", prompt: "Instructions: "},
		{key: "notes", prompt: "Notes: "},
	},
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	args, autoSync := splitSyncFlag(args)
	if len(args) == 0 {
		return fmt.Errorf("missing data kind. %s", addUsage)
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	var payload json.RawMessage
	if len(args) > 1 {
		payload, err = parseAssignments(args[1:])
	} else {
		payload, err = c.promptFields(kind)
	}
	if err != nil {
		return err
	}

	record, err := c.dataService.Create(ctx, householdID, kind, payload)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", kind, err)
	}

	c.io.Println()
	c.io.Printf("✓ Added %s: %s\n", kind, summary(record))
	c.io.Printf("  Local ID: %s\n", record.ID)

	if autoSync {
		c.syncAfterChange(ctx, householdID, kind)
	} else {
		c.io.Println("  Saved locally. Run 'homesync sync' to push it to the server.")
	}
	return nil
}

func (c *Cli) promptFields(kind models.DataKind) (json.RawMessage, error) {
	c.io.Printf("=== Add %s ===\n", kind)
	c.io.Println()

	fields := make(map[string]any)
	for _, f := range addForms[kind] {
		input, err := c.io.ReadInput(f.prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		if input == "" {
			if f.required {
				return nil, fmt.Errorf("%s cannot be empty", f.key)
			}
			continue
		}

		switch f.typ {
		case fieldNumber:
			v, err := strconv.ParseFloat(input, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number", f.key)
			}
			fields[f.key] = v
		case fieldInt:
			v, err := strconv.Atoi(input)
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer", f.key)
			}
			fields[f.key] = v
		case fieldList:
			var items []string
			for _, part := range strings.Split(input, ",") {
				if p := strings.TrimSpace(part); p != "" {
					items = append(items, p)
				}
			}
			fields[f.key] = items
		default:
			fields[f.key] = input
		}
	}
	return json.Marshal(fields)
}

// syncAfterChange пытается сразу синхронизировать вид данных.
// Ошибка сети не является ошибкой команды: изменение уже в очереди
func (c *Cli) syncAfterChange(ctx context.Context, householdID string, kind models.DataKind) {
	c.io.Println("  Syncing...")
	res, err := c.syncService.Sync(ctx, householdID, kind)
	if err != nil {
		c.io.Printf("  ⚠ Sync failed, the change stays queued: %v\n", err)
		return
	}
	c.printCycle(res)
}
