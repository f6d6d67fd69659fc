package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runPending(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if len(args) != 2 {
			return fmt.Errorf("usage: homesync pending [requeue|discard <operation-id>]")
		}
		switch args[0] {
		case "requeue":
			if err := c.syncService.Requeue(ctx, args[1]); err != nil {
				return fmt.Errorf("failed to requeue %s: %w", args[1], err)
			}
			c.io.Printf("✓ Operation %s is queued again\n", args[1])
			return nil
		case "discard":
			if err := c.syncService.Discard(ctx, args[1]); err != nil {
				return fmt.Errorf("failed to discard %s: %w", args[1], err)
			}
			c.io.Printf("✓ Operation %s discarded\n", args[1])
			return nil
		default:
			return fmt.Errorf("unknown pending action: %s", args[0])
		}
	}

	ops, err := c.store.GetPendingOperations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending operations: %w", err)
	}

	c.io.Println("=== Pending changes ===")
	c.io.Println()
	if len(ops) == 0 {
		c.io.Println("Nothing to send.")
		return nil
	}

	for _, op := range ops {
		c.io.Printf("%s  %-6s %s/%s  household=%s  created=%s",
			op.ID, op.Kind, op.Target.Kind, op.Target.EntityID, op.HouseholdID, formatMillis(op.CreatedAt))
		if op.RetryCount > 0 {
			c.io.Printf("  retries=%d", op.RetryCount)
		}
		if op.IsParked() {
			c.io.Printf("  PARKED")
		}
		c.io.Println()
		if op.LastError != "" {
			c.io.Printf("    last error: %s\n", op.LastError)
		}
	}
	c.io.Println()
	c.io.Printf("Total: %d\n", len(ops))
	return nil
}
