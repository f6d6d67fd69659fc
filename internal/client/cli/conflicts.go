package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
)

func (c *Cli) runConflicts(ctx context.Context, args []string) error {
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}

	kinds := models.AllKinds
	if len(args) > 0 {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []models.DataKind{kind}
	}

	c.io.Println("=== Open conflicts ===")
	c.io.Println()

	total := 0
	for _, kind := range kinds {
		conflicts, err := c.syncService.OpenConflicts(ctx, householdID, kind)
		if err != nil {
			return fmt.Errorf("failed to read conflicts for %s: %w", kind, err)
		}
		for _, cf := range conflicts {
			total++
			c.io.Printf("%s %s\n", kind, cf.ID)
			c.io.Printf("  local  (%s): %s\n", formatMillis(cf.LocalTimestamp), summary(&cf.LocalData))
			c.io.Printf("  server (%s): %s\n", formatMillis(cf.ServerTimestamp), summary(&cf.ServerData))
		}
	}

	if total == 0 {
		c.io.Println("No open conflicts.")
		return nil
	}
	c.io.Println()
	c.io.Println("Use 'homesync resolve <kind> <id> <server-wins|client-wins|merge>' to decide.")
	return nil
}

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("missing arguments. Usage: homesync resolve <kind> <id> <server-wins|client-wins|merge>")
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	choice, err := models.ParseStrategy(args[2])
	if err != nil {
		return err
	}
	r, err := c.syncService.ResolveManual(ctx, householdID, kind, args[1], choice)
	if apperr.Is(err, apperr.ErrConflictUnresolved) {
		return fmt.Errorf("conflict %s %s stays open: %w", kind, args[1], err)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve %s %s: %w", kind, args[1], err)
	}

	c.io.Printf("✓ Resolved %s %s with %s: %s\n", kind, args[1], choice, summary(r))
	return nil
}
