package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/driftlabs/driftsync/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	report, err := c.coordinator.Status(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Connection state:  %s\n", report.ConnectionState)
	c.io.Printf("Pending syncs:     %d\n", report.PendingSyncs)
	c.io.Printf("Offline changes:   %d\n", report.OfflineChangeCount)
	c.io.Printf("Dead letters:      %d\n", report.DeadLetters)
	if report.LastFullSync.IsZero() {
		c.io.Println("Last full sync:    never")
	} else {
		c.io.Printf("Last full sync:    %s\n", report.LastFullSync.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (c *Cli) runSync(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("sync", flag.ContinueOnError)
	redrive := flags.Uint64("redrive", 0, "move a dead-letter entry back into the queue before draining")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *redrive != 0 {
		if err := c.coordinator.Redrive(ctx, *redrive); err != nil {
			return err
		}
		c.io.Printf("Dead letter %d queued for retry.\n", *redrive)
	}

	reachable := c.apiClient.Health(ctx) == nil
	result, err := c.coordinator.Drain(ctx, reachable)
	if err != nil {
		return err
	}

	switch result.State {
	case models.StateOffline:
		c.io.Println("Server unreachable; changes stay queued.")
	case models.StateOnline:
		c.io.Printf("Synced: %d pushed", result.Acked)
		if result.Requeued > 0 {
			c.io.Printf(", %d waiting for retry", result.Requeued)
		}
		c.io.Println("")
	case models.StateError:
		c.io.Printf("Sync finished with failures: %d pushed, %d parked as dead letters.\n",
			result.Acked, result.Parked)
		c.io.Println("Inspect them with 'driftsync status' and retry with 'driftsync sync --redrive <seq>'.")
	default:
		return fmt.Errorf("unexpected drain state %s", result.State)
	}
	return nil
}
