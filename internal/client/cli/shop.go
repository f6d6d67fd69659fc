package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/pkg/api"
)

// runShop выполняет групповую операцию над списком покупок.
// Операция требует сети: в очередь она не ставится
func (c *Cli) runShop(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing arguments. Usage: homesync shop <complete|uncomplete|delete> <id>...")
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}

	op := args[0]
	switch op {
	case api.BulkComplete, api.BulkUncomplete, api.BulkDelete:
	default:
		return fmt.Errorf("unknown shopping operation: %s", op)
	}

	for _, id := range args[1:] {
		if models.IsOptimisticID(id) {
			return fmt.Errorf("item %s is not synced yet, run 'homesync sync shopping' first", id)
		}
	}

	resp, err := c.server.BulkShopping(ctx, householdID, api.BulkShoppingRequest{
		Operation: op,
		ItemIDs:   args[1:],
	})
	if err != nil {
		return fmt.Errorf("bulk %s failed: %w", op, err)
	}

	c.io.Printf("✓ %s: %d of %d items changed\n", op, len(resp.ItemIDs), len(args)-1)

	res, err := c.syncService.Sync(ctx, householdID, models.KindShoppingList)
	if err != nil {
		c.io.Printf("⚠ Local list not refreshed: %v\n", err)
		return nil
	}
	c.printCycle(res)
	return nil
}
