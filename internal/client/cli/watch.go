package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/homesync/pkg/api"
)

func (c *Cli) runWatch(ctx context.Context) error {
	householdID, err := c.requireHousehold()
	if err != nil {
		return err
	}
	if c.watch == nil {
		return errors.New("realtime is not available")
	}

	c.io.Printf("Watching %s, press Ctrl+C to stop...\n", householdID)
	err = c.watch(ctx, func(household string, event api.Event) {
		c.io.Printf("[%s] %s\n", household, event.Type())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch stopped: %w", err)
	}
	c.io.Println("Stopped.")
	return nil
}
