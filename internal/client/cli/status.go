package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/iudanet/homesync/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()
	c.io.Printf("Server:    %s\n", c.serverURL)
	if c.household == "" {
		c.io.Println("Household: (not selected)")
	} else {
		c.io.Printf("Household: %s\n", c.household)
	}

	online := c.server.Health(ctx) == nil
	if online {
		c.io.Println("Connection: online")
	} else {
		c.io.Println("Connection: offline")
	}

	ops, err := c.store.GetPendingOperations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending operations: %w", err)
	}
	queued, parked := 0, 0
	for _, op := range ops {
		if op.IsParked() {
			parked++
		} else {
			queued++
		}
	}
	c.io.Println()
	c.io.Printf("Pending changes: %d queued, %d parked\n", queued, parked)
	if parked > 0 {
		c.io.Println("  Run 'homesync pending' to requeue or discard parked changes.")
	}

	if c.household != "" {
		c.io.Println()
		c.io.Println("Last sync:")
		for _, kind := range models.AllKinds {
			ts, err := c.store.GetLastSyncTimestamp(ctx, c.household, kind)
			if err != nil {
				return fmt.Errorf("failed to read watermark for %s: %w", kind, err)
			}
			conflicts, err := c.syncService.OpenConflicts(ctx, c.household, kind)
			if err != nil {
				return fmt.Errorf("failed to read conflicts for %s: %w", kind, err)
			}
			c.io.Printf("  %-14s %s", kind, formatMillis(ts))
			if len(conflicts) > 0 {
				c.io.Printf(" (%d open conflicts)", len(conflicts))
			}
			c.io.Println()
		}
	}

	if !online {
		return nil
	}
	stats, err := c.server.Stats(ctx)
	if err != nil {
		// статистика не обязательна для статуса
		return nil
	}
	c.io.Println()
	c.io.Printf("Realtime: %d connections\n", stats.Connections)
	households := make([]string, 0, len(stats.Households))
	for h := range stats.Households {
		households = append(households, h)
	}
	sort.Strings(households)
	for _, h := range households {
		c.io.Printf("  %s: %d\n", h, stats.Households[h])
	}
	return nil
}
