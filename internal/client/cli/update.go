package cli

import (
	"context"
	"fmt"
)

var updateUsage = "Usage: homesync update <kind> <id> field=value [field=value ...] [--sync]"

func (c *Cli) runUpdate(ctx context.Context, args []string) error {
	args, autoSync := splitSyncFlag(args)
	if len(args) < 3 {
		return fmt.Errorf("missing arguments. %s", updateUsage)
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	patch, err := parseAssignments(args[2:])
	if err != nil {
		return err
	}

	record, err := c.dataService.Update(ctx, householdID, kind, args[1], patch)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, args[1], err)
	}

	c.io.Printf("✓ Updated %s: %s\n", kind, summary(record))
	if autoSync {
		c.syncAfterChange(ctx, householdID, kind)
	}
	return nil
}
