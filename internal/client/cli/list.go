package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/homesync/internal/models"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing data kind. Usage: homesync list <inventory|shopping|meal|recipe>")
	}
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	records, err := c.dataService.List(ctx, householdID, kind)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", kind, err)
	}

	c.io.Printf("=== %s (%s) ===\n", kind, householdID)
	c.io.Println()

	if len(records) == 0 {
		c.io.Println("No entries found.")
		c.io.Println()
		c.io.Printf("Use 'homesync add %s' to add the first one.\n", args[0])
		return nil
	}

	for i := range records {
		r := &records[i]
		c.io.Printf("%d. %s\n", i+1, summary(r))
		if models.IsOptimisticID(r.ID) {
			c.io.Printf("   ID:    %s (not synced yet)\n", r.ID)
		} else {
			c.io.Printf("   ID:    %s\n", r.ID)
		}
	}
	c.io.Println()
	c.io.Printf("Total: %d\n", len(records))
	return nil
}
