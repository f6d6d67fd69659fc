package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	args, autoSync := splitSyncFlag(args)
	if len(args) != 2 {
		return fmt.Errorf("missing arguments. Usage: homesync delete <kind> <id> [--sync]")
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	if err := c.dataService.Delete(ctx, householdID, kind, args[1]); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, args[1], err)
	}

	c.io.Printf("✓ Deleted %s %s\n", kind, args[1])
	if autoSync {
		c.syncAfterChange(ctx, householdID, kind)
	}
	return nil
}
