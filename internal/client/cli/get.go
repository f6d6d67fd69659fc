package cli

import (
	"context"
	"fmt"
	"text/template"

	"github.com/iudanet/homesync/internal/models"
)

var detailTemplates = map[models.DataKind]*template.Template{
	models.KindInventory:    template.Must(template.New("inventory").Parse(inventoryTemplate)),
	models.KindShoppingList: template.Must(template.New("shopping").Parse(shoppingTemplate)),
	models.KindMealPlan:     template.Must(template.New("meal").Parse(mealPlanTemplate)),
	models.KindRecipes:      template.Must(template.New("recipe").Parse(recipeTemplate)),
}

type detailView struct {
	Item    any
	ID      string
	Updated string
	Version int64
}

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("missing arguments. Usage: homesync get <kind> <id>")
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	r, err := c.dataService.Get(ctx, householdID, kind, args[1])
	if err != nil {
		return err
	}

	var item any
	switch kind {
	case models.KindInventory:
		item, err = models.DecodeData[models.InventoryItem](r)
	case models.KindShoppingList:
		item, err = models.DecodeData[models.ShoppingListItem](r)
	case models.KindMealPlan:
		item, err = models.DecodeData[models.MealPlanEntry](r)
	case models.KindRecipes:
		item, err = models.DecodeData[models.Recipe](r)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", kind, r.ID, err)
	}

	view := detailView{
		Item:    item,
		ID:      r.ID,
		Version: r.Version,
		Updated: r.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	return detailTemplates[kind].Execute(c.io, view)
}
