package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	journalMongo "github.com/krancour/dqueue/pkg/journal/mongodb"
	"github.com/krancour/dqueue/pkg/mongodb"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func runList(c *cli.Context) error {
	// Args
	if c.NArg() > 1 {
		return errors.New(
			"runs accepts at most one argument-- a queue name",
		)
	}
	queueName := c.Args().First()

	// Command-specific flags
	limit := c.Int64(flagLimit)
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	config, err := getConfig()
	if err != nil {
		return errors.Wrapf(err, "error retrieving configuration")
	}
	if config.MongoDB == nil {
		return errors.New(
			"no mongodb connection is configured; please use " +
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

	runs, err := store.ListRuns(signals.Context(), queueName, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	switch strings.ToLower(output) {
	case outputFormatTable:
		table := uitable.New()
		table.AddRow("ID", "QUEUE", "STATE", "CONSUMED", "STARTED", "DURATION")
		for _, run := range runs {
			var duration string
			if run.Ended != nil {
				duration = run.Ended.Sub(run.Started).Round(time.Second).String()
			}
			table.AddRow(
				run.ID,
				run.Queue,
				run.State,
				run.ItemsConsumed,
				run.Started.Format(time.RFC3339),
				duration,
			)
		}
		fmt.Println(table)

	case outputFormatJSON:
		prettyJSON, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list runs operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
