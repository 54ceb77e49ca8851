package main

import (
	"fmt"
	"strconv"

	"github.com/krancour/dqueue/pkg/producer"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func queuePush(c *cli.Context) error {
	// Args
	if c.NArg() < 2 {
		return errors.New(
			"push requires at least two arguments-- a queue name and an item",
		)
	}
	queueName := c.Args().First()
	items, err := parseItems(c.Args().Tail())
	if err != nil {
		return err
	}

	q, redisClient, err := getQueue(queueName)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	ctx := signals.Context()
	p := producer.NewProducer(q, nil)
	for _, item := range items {
		if err := p.Publish(ctx, item); err != nil {
			return err
		}
	}

	fmt.Printf("Pushed %d item(s) onto queue %q.\n", len(items), queueName)

	return nil
}

// parseItems converts command line arguments into work items. The sentinel
// is refused here so that `dqueue close` remains the only way to push it.
func parseItems(args []string) ([]int, error) {
	items := make([]int, len(args))
	for i, arg := range args {
		item, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.Errorf("%q is not an integer", arg)
		}
		if item == queue.Sentinel {
			return nil, errors.Errorf(
				"%d is reserved; use `dqueue close` to push the sentinel",
				queue.Sentinel,
			)
		}
		items[i] = item
	}
	return items, nil
}

func queueClose(c *cli.Context) error {
	// Args
	if c.NArg() != 1 {
		return errors.New(
			"close requires one argument-- a queue name",
		)
	}
	queueName := c.Args().First()

	q, redisClient, err := getQueue(queueName)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	if err := producer.NewProducer(q, nil).Close(signals.Context()); err != nil {
		return err
	}

	fmt.Printf("Pushed the sentinel onto queue %q.\n", queueName)

	return nil
}
