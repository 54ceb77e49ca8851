package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/dqueue/pkg/version"
	"github.com/urfave/cli"
)

func main() {
	// Otherwise glog writes to files under the temp dir
	flag.Set("logtostderr", "true") // nolint: errcheck
	defer glog.Flush()

	app := cli.NewApp()
	app.Name = "dqueue"
	app.Usage = "Push, inspect, and consume shared blocking queues"
	app.Version = version.Version()
	app.Commands = []cli.Command{
		{
			Name:   "connect",
			Usage:  "Save a connection profile",
			Action: connect,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  flagRedisHost,
					Usage: "Redis host (required)",
				},
				cli.IntFlag{
					Name:  flagRedisPort,
					Usage: "Redis port",
					Value: 6379,
				},
				cli.StringFlag{
					Name:  flagRedisPassword,
					Usage: "Redis password",
				},
				cli.IntFlag{
					Name:  flagRedisDB,
					Usage: "Redis database number",
				},
				cli.BoolFlag{
					Name:  flagRedisTLS,
					Usage: "If set, connect to Redis using TLS",
				},
				cli.StringFlag{
					Name:  flagRedisPrefix,
					Usage: "Prefix prepended to every Redis key",
				},
				cli.StringFlag{
					Name: flagMongoDBHost,
					Usage: "MongoDB host; only needed for journaling consumer runs " +
						"and listing them",
				},
				cli.IntFlag{
					Name:  flagMongoDBPort,
					Usage: "MongoDB port",
					Value: 27017,
				},
				cli.StringFlag{
					Name:  flagMongoDBDatabase,
					Usage: "MongoDB database",
					Value: "dqueue",
				},
				cli.StringFlag{
					Name:  flagMongoDBReplicaSet,
					Usage: "MongoDB replica set",
				},
				cli.StringFlag{
					Name:  flagMongoDBUsername,
					Usage: "MongoDB username",
				},
				cli.StringFlag{
					Name:  flagMongoDBPassword,
					Usage: "MongoDB password",
				},
			},
		},
		{
			Name:   "disconnect",
			Usage:  "Remove the saved connection profile",
			Action: disconnect,
		},
		{
			Name:      "push",
			Usage:     "Push one or more items onto a queue",
			ArgsUsage: "QUEUE ITEM [ITEM...]",
			Action:    queuePush,
		},
		{
			Name:      "close",
			Usage:     "Push the sentinel onto a queue so its consumers finish",
			ArgsUsage: "QUEUE",
			Action:    queueClose,
		},
		{
			Name:      "inspect",
			Usage:     "Show the length and head of a queue",
			ArgsUsage: "QUEUE",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  flagHead,
					Usage: "Number of items to show from the head of the queue",
					Value: 10,
				},
				cliFlagOutput,
			},
			Action: queueInspect,
		},
		{
			Name:      "purge",
			Usage:     "Discard every item on a queue, including any sentinel",
			ArgsUsage: "QUEUE",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  flagsYes,
					Usage: "Confirm the purge",
				},
			},
			Action: queuePurge,
		},
		{
			Name:      "consume",
			Usage:     "Consume a queue until its sentinel is observed",
			ArgsUsage: "QUEUE",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  flagsConsumers,
					Usage: "Number of concurrent consumers",
					Value: 1,
				},
				cli.DurationFlag{
					Name:  flagsDelay,
					Usage: "Pause between items",
					Value: 5 * time.Second,
				},
				cli.BoolFlag{
					Name:  flagsJournal,
					Usage: "If set, record each consumer's run in MongoDB",
				},
			},
			Action: consume,
		},
		{
			Name:      "runs",
			Usage:     "List journaled consumer runs",
			ArgsUsage: "[QUEUE]",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  flagsLimit,
					Usage: "Maximum number of runs to list",
					Value: 20,
				},
				cliFlagOutput,
			},
			Action: runList,
		},
		{
			Name:  "demo",
			Usage: "Run a producer and consumers against an in-memory queue",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  flagsItems,
					Usage: "Number of items to produce",
					Value: 10,
				},
				cli.IntFlag{
					Name:  flagsConsumers,
					Usage: "Number of concurrent consumers",
					Value: 3,
				},
				cli.DurationFlag{
					Name:  flagsDelay,
					Usage: "Pause between items",
					Value: 500 * time.Millisecond,
				},
			},
			Action: demo,
		},
		{
			Name:   "version",
			Usage:  "Print the version",
			Action: printVersion,
		},
	}
	fmt.Println()
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("\n%s\n\n", err)
		os.Exit(1)
	}
	fmt.Println()
}
