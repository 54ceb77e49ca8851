package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

type queueStatus struct {
	Name   string `json:"name"`
	Length int64  `json:"length"`
	Head   []int  `json:"head"`
}

func queueInspect(c *cli.Context) error {
	// Args
	if c.NArg() != 1 {
		return errors.New(
			"inspect requires one argument-- a queue name",
		)
	}
	queueName := c.Args().First()

	// Command-specific flags
	head := c.Int64(flagHead)
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	inspector, redisClient, err := getInspector(queueName)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	ctx := signals.Context()
	status := queueStatus{Name: queueName}
	if status.Length, err = inspector.Len(ctx); err != nil {
		return err
	}
	if status.Head, err = inspector.Peek(ctx, head); err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case outputFormatTable:
		table := uitable.New()
		table.AddRow("QUEUE", "LENGTH", "HEAD")
		table.AddRow(status.Name, status.Length, formatHead(status.Head))
		fmt.Println(table)

	case outputFormatJSON:
		prettyJSON, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from inspect queue operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}

func formatHead(items []int) string {
	strs := make([]string, len(items))
	for i, item := range items {
		if item == queue.Sentinel {
			strs[i] = "<sentinel>"
			continue
		}
		strs[i] = fmt.Sprintf("%d", item)
	}
	return strings.Join(strs, " ")
}

func queuePurge(c *cli.Context) error {
	// Args
	if c.NArg() != 1 {
		return errors.New(
			"purge requires one argument-- a queue name",
		)
	}
	queueName := c.Args().First()

	if !c.Bool(flagYes) {
		return errors.Errorf(
			"purging queue %q discards every item, including any sentinel; "+
				"re-run with --%s to confirm",
			queueName,
			flagYes,
		)
	}

	inspector, redisClient, err := getInspector(queueName)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	if err := inspector.Purge(signals.Context()); err != nil {
		return err
	}

	fmt.Printf("Queue %q purged.\n", queueName)

	return nil
}
