package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/krancour/dqueue/pkg/consumer"
	"github.com/krancour/dqueue/pkg/journal"
	journalMongo "github.com/krancour/dqueue/pkg/journal/mongodb"
	"github.com/krancour/dqueue/pkg/mongodb"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func consume(c *cli.Context) error {
	// Args
	if c.NArg() != 1 {
		return errors.New(
			"consume requires one argument-- a queue name",
		)
	}
	queueName := c.Args().First()

	// Command-specific flags
	consumerCount := c.Int(flagConsumers)
	delay := c.Duration(flagDelay)
	journalEnabled := c.Bool(flagJournal)

	if consumerCount < 1 {
		return errors.Errorf("--%s must be at least 1", flagConsumers)
	}

	q, redisClient, err := getQueue(queueName)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	observers := consumer.Observers{}
	if journalEnabled {
		config, err := getConfig()
		if err != nil {
			return err
		}
		if config.MongoDB == nil {
			return errors.New(
				"journaling requires a mongodb connection; please use " +
					"`dqueue connect --mongodb-host` to configure one",
			)
		}
		database, err := mongodb.Connect(*config.MongoDB)
		if err != nil {
			return err
		}
		defer database.Client().Disconnect(context.Background()) // nolint: errcheck
		store, err := journalMongo.NewStore(database)
		if err != nil {
			return err
		}
		observers = append(observers, journal.NewRecorder(store))
	}

	if err := runConsumers(
		signals.Context(),
		q,
		os.Stdout,
		consumerCount,
		delay,
		observers,
	); err != nil {
		return err
	}

	fmt.Printf(
		"All %d consumer(s) of queue %q finished.\n",
		consumerCount,
		queueName,
	)

	return nil
}

// runConsumers runs the specified number of consumers against a single queue
// and waits for all of them to finish.
func runConsumers(
	ctx context.Context,
	q queue.Queue,
	out io.Writer,
	count int,
	delay time.Duration,
	observer consumer.Observer,
) error {
	consumers := make([]consumer.Consumer, count)
	for i := range consumers {
		consumers[i] = consumer.NewConsumer(
			q,
			&consumer.Options{
				ProcessingDelay: &delay,
				Output:          out,
				Observer:        observer,
			},
		)
	}
	return consumer.RunGroup(ctx, consumers...)
}
