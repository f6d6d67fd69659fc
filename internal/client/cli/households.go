package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runHouseholds(ctx context.Context) error {
	households, err := c.server.Households(ctx)
	if err != nil {
		return fmt.Errorf("failed to list households: %w", err)
	}

	c.io.Println("=== Households ===")
	c.io.Println()
	if len(households) == 0 {
		c.io.Println("You are not a member of any household.")
		return nil
	}
	for _, h := range households {
		mark := " "
		if h.ID == c.household {
			mark = "*"
		}
		c.io.Printf("%s %s (%s)\n", mark, h.ID, h.Role)
	}
	return nil
}
