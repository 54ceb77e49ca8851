package main

import (
	"context"
	"fmt"

	"github.com/krancour/dqueue/pkg/mongodb"
	myRedis "github.com/krancour/dqueue/pkg/redis"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func connect(c *cli.Context) error {
	// Args
	if c.NArg() != 0 {
		return errors.New("connect requires no arguments")
	}

	config := &config{
		Redis: myRedis.Config{
			Host:      c.String(flagRedisHost),
			Port:      c.Int(flagRedisPort),
			Password:  c.String(flagRedisPassword),
			DB:        c.Int(flagRedisDB),
			EnableTLS: c.Bool(flagRedisTLS),
			Prefix:    c.String(flagRedisPrefix),
		},
	}
	if config.Redis.Host == "" {
		return errors.Errorf("--%s is required", flagRedisHost)
	}

	redisClient := myRedis.NewClient(config.Redis)
	defer redisClient.Close()
	if err := redisClient.Ping().Err(); err != nil {
		return errors.Wrapf(
			err,
			"error connecting to redis at %s:%d",
			config.Redis.Host,
			config.Redis.Port,
		)
	}

	if mongoHost := c.String(flagMongoDBHost); mongoHost != "" {
		config.MongoDB = &mongodb.Config{
			Host:       mongoHost,
			Port:       c.Int(flagMongoDBPort),
			Database:   c.String(flagMongoDBDatabase),
			ReplicaSet: c.String(flagMongoDBReplicaSet),
			Username:   c.String(flagMongoDBUsername),
			Password:   c.String(flagMongoDBPassword),
		}
		database, err := mongodb.Connect(*config.MongoDB)
		if err != nil {
			return err
		}
		// We're ignoring any error here because the connection has already
		// proven itself usable.
		database.Client().Disconnect(context.Background()) // nolint: errcheck
	}

	if err := saveConfig(config); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	fmt.Printf(
		"Connection profile saved for redis at %s:%d.\n",
		config.Redis.Host,
		config.Redis.Port,
	)

	return nil
}

func disconnect(c *cli.Context) error {
	// Args
	if c.NArg() != 0 {
		return errors.New("disconnect requires no arguments")
	}

	if err := deleteConfig(); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}

	fmt.Println("Connection profile removed.")

	return nil
}
