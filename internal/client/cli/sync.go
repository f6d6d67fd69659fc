package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/iudanet/homesync/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context, args []string) error {
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}

	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if len(args) > 0 {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		res, err := c.syncService.Sync(ctx, householdID, kind)
		if err != nil {
			return fmt.Errorf("sync %s failed: %w", kind, err)
		}
		c.printCycle(res)
		return nil
	}

	results, err := c.syncService.SyncHousehold(ctx, householdID)
	for _, res := range results {
		c.printCycle(res)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed")
	return nil
}

// printCycle печатает итог одного цикла
func (c *Cli) printCycle(res *sync.CycleResult) {
	if res == nil {
		return
	}
	c.io.Printf("%s: %d entries", res.Kind, len(res.Synced))
	if res.Resolved > 0 {
		c.io.Printf(", %d conflicts resolved", res.Resolved)
	}
	if len(res.Conflicts) > 0 {
		c.io.Printf(", %d conflicts open", len(res.Conflicts))
	}
	c.io.Println()

	if res.Replay.Applied > 0 || res.Replay.Parked > 0 || res.Replay.Remaining > 0 {
		c.io.Printf("  pending: %d sent, %d parked, %d left\n",
			res.Replay.Applied, res.Replay.Parked, res.Replay.Remaining)
	}
	if res.Replay.Held > 0 {
		c.io.Printf("  %d held until conflicts are resolved\n", res.Replay.Held)
	}
	for _, f := range res.Failed {
		c.io.Printf("  ⚠ %s: %v\n", f.ID, f.Err)
	}

	households := make([]string, 0, len(res.Replay.Errors))
	for h := range res.Replay.Errors {
		households = append(households, h)
	}
	sort.Strings(households)
	for _, h := range households {
		c.io.Printf("  ⚠ replay stopped for %s: %v\n", h, res.Replay.Errors[h])
	}

	if len(res.Conflicts) > 0 {
		c.io.Printf("  Run 'homesync conflicts %s' to review them.\n", res.Kind)
	}
}
