package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/krancour/dqueue/pkg/producer"
	"github.com/krancour/dqueue/pkg/queue/memory"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

func demo(c *cli.Context) error {
	// Args
	if c.NArg() != 0 {
		return errors.New("demo requires no arguments")
	}

	// Command-specific flags
	itemCount := c.Int(flagItems)
	consumerCount := c.Int(flagConsumers)
	delay := c.Duration(flagDelay)

	if itemCount < 0 {
		return errors.Errorf("--%s must not be negative", flagItems)
	}
	if consumerCount < 1 {
		return errors.Errorf("--%s must be at least 1", flagConsumers)
	}

	return runDemo(signals.Context(), os.Stdout, itemCount, consumerCount, delay)
}

// runDemo wires a producer and a group of consumers to a single in-memory
// queue. The producer publishes 1 through itemCount followed by the
// sentinel. Once every consumer has finished, the queue should hold nothing
// but the sentinel.
func runDemo(
	ctx context.Context,
	out io.Writer,
	itemCount int,
	consumerCount int,
	delay time.Duration,
) error {
	q := memory.NewAttacher().AttachMemory("demo")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return producer.PublishAll(
			groupCtx,
			producer.NewProducer(q, nil),
			producer.Sequence(itemCount),
			0,
		)
	})
	group.Go(func() error {
		return runConsumers(groupCtx, q, out, consumerCount, delay, nil)
	})
	if err := group.Wait(); err != nil {
		return err
	}

	remaining, err := q.Peek(ctx, -1)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Remaining on queue: %s\n", formatHead(remaining))
	return nil
}
