package consumer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunGroup runs all of the provided consumers concurrently and blocks until
// every one of them has stopped. If any consumer fails, the others are
// signaled to stop via context cancellation and the first failure is
// returned. If every consumer observes the sentinel, RunGroup returns nil.
func RunGroup(ctx context.Context, consumers ...Consumer) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, c := range consumers {
		c := c
		group.Go(func() error {
			return c.Run(ctx)
		})
	}
	return group.Wait()
}
